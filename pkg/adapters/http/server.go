package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/storyline/internal/logging"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Reporter is the lifecycle surface the HTTP API drives.
// *storyline.Reporter satisfies it.
type Reporter interface {
	StartLaunch(ctx context.Context, spec domain.LaunchSpec) domain.ItemID
	FinishLaunch(ctx context.Context)
	StartStory(ctx context.Context, story domain.Story, given bool) domain.ItemID
	FinishStory(ctx context.Context)
	SetScenarioMeta(meta domain.Meta)
	StartScenario(ctx context.Context, name string) domain.ItemID
	FinishScenario(ctx context.Context, status domain.Status)
	BeginExamples(steps []string)
	Example(label string, params map[string]string)
	EndExamples()
	StartStep(ctx context.Context, text string) domain.ItemID
	FinishStep(ctx context.Context, status domain.Status)
	ForceFinishAllOpenItems(ctx context.Context, status domain.Status)
	CurrentItem() domain.ItemID
	Snapshot() domain.Snapshot
}

// Server exposes a Reporter over HTTP for test engines that are not written in Go.
//
// Lifecycle calls always answer 200: reporting never fails the caller, so an
// empty id is the only sign that an item was not reported. Only malformed
// requests are rejected.
type Server struct {
	reporter Reporter
	streams  *StreamManager
	logger   *slog.Logger

	// mu serializes lifecycle calls; the execution context is single-threaded.
	mu sync.Mutex
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStreams serves GET /events from the given stream manager.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.streams = streams
	}
}

// New creates the API server for the reporter.
func New(reporter Reporter, opts ...Option) *Server {
	s := &Server{
		reporter: reporter,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for the reporter.
func NewHandler(reporter Reporter, opts ...Option) http.Handler {
	return New(reporter, opts...).Handler()
}

// Handler returns the routes wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	return enableCORS(s.Routes())
}

// FinishAll force-finishes every open item with status and closes the open
// launch, if any. It is serialized with the lifecycle calls, so it can run
// while requests are still being handled.
func (s *Server) FinishAll(ctx context.Context, status domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reporter.ForceFinishAllOpenItems(ctx, status)
	if s.reporter.Snapshot().LaunchID.IsSet() {
		s.reporter.FinishLaunch(ctx)
	}
}

// Routes builds the chi router without middleware, so it can be mounted elsewhere.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/current-item", s.GetCurrentItem)
	r.Get("/context", s.GetContext)
	if s.streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}

	r.Post("/launch", s.StartLaunch)
	r.Delete("/launch", s.FinishLaunch)

	r.Post("/stories", s.StartStory)
	r.Delete("/stories/current", s.FinishStory)

	r.Put("/scenarios/meta", s.SetScenarioMeta)
	r.Post("/scenarios", s.StartScenario)
	r.Delete("/scenarios/current", s.FinishScenario)

	r.Post("/examples", s.BeginExamples)
	r.Put("/examples/current", s.Example)
	r.Delete("/examples", s.EndExamples)

	r.Post("/steps", s.StartStep)
	r.Delete("/steps/current", s.FinishStep)

	r.Post("/cleanup", s.Cleanup)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- Request and response bodies --

// StoryRequest is the body of POST /stories.
type StoryRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Meta        []string `json:"meta,omitempty"`
	Given       bool     `json:"given,omitempty"`
}

// MetaRequest is the body of PUT /scenarios/meta. Lines look like "@key value".
type MetaRequest struct {
	Meta []string `json:"meta"`
}

// ScenarioRequest is the body of POST /scenarios.
type ScenarioRequest struct {
	Name string `json:"name"`
}

// ExamplesRequest is the body of POST /examples.
type ExamplesRequest struct {
	Steps []string `json:"steps"`
}

// ExampleRequest is the body of PUT /examples/current.
type ExampleRequest struct {
	Label  string            `json:"label"`
	Params map[string]string `json:"params"`
}

// StepRequest is the body of POST /steps.
type StepRequest struct {
	Text string `json:"text"`
}

// StatusRequest is the optional body of the finish endpoints.
type StatusRequest struct {
	Status domain.Status `json:"status,omitempty"`
}

// IDResponse carries the id of a started item. It is empty when the item was not reported.
type IDResponse struct {
	ID domain.ItemID `json:"id"`
}

// -- Handlers --

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetCurrentItem handles GET /current-item. It does not take the lifecycle lock.
func (s *Server) GetCurrentItem(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, IDResponse{ID: s.reporter.CurrentItem()})
}

// GetContext handles GET /context.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.reporter.Snapshot()
	s.mu.Unlock()
	s.writeJSON(w, snap)
}

// StartLaunch handles POST /launch.
func (s *Server) StartLaunch(w http.ResponseWriter, r *http.Request) {
	var body domain.LaunchSpec
	if !s.decode(w, r, "StartLaunch", &body, false) {
		return
	}
	if body.Mode != "" && !body.Mode.Valid() {
		s.badRequest(w, "StartLaunch", fmt.Errorf("unknown mode %q", body.Mode))
		return
	}

	s.mu.Lock()
	id := s.reporter.StartLaunch(r.Context(), body)
	s.mu.Unlock()
	s.writeJSON(w, IDResponse{ID: id})
}

// FinishLaunch handles DELETE /launch.
func (s *Server) FinishLaunch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.reporter.FinishLaunch(r.Context())
	s.mu.Unlock()
	s.writeOK(w)
}

// StartStory handles POST /stories.
func (s *Server) StartStory(w http.ResponseWriter, r *http.Request) {
	var body StoryRequest
	if !s.decode(w, r, "StartStory", &body, false) {
		return
	}
	story := domain.Story{
		Name:        body.Name,
		Description: body.Description,
		Meta:        domain.ParseMeta(body.Meta...),
	}

	s.mu.Lock()
	id := s.reporter.StartStory(r.Context(), story, body.Given)
	s.mu.Unlock()
	s.writeJSON(w, IDResponse{ID: id})
}

// FinishStory handles DELETE /stories/current.
func (s *Server) FinishStory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.reporter.FinishStory(r.Context())
	s.mu.Unlock()
	s.writeOK(w)
}

// SetScenarioMeta handles PUT /scenarios/meta.
func (s *Server) SetScenarioMeta(w http.ResponseWriter, r *http.Request) {
	var body MetaRequest
	if !s.decode(w, r, "SetScenarioMeta", &body, false) {
		return
	}

	s.mu.Lock()
	s.reporter.SetScenarioMeta(domain.ParseMeta(body.Meta...))
	s.mu.Unlock()
	s.writeOK(w)
}

// StartScenario handles POST /scenarios.
func (s *Server) StartScenario(w http.ResponseWriter, r *http.Request) {
	var body ScenarioRequest
	if !s.decode(w, r, "StartScenario", &body, false) {
		return
	}

	s.mu.Lock()
	id := s.reporter.StartScenario(r.Context(), body.Name)
	s.mu.Unlock()
	s.writeJSON(w, IDResponse{ID: id})
}

// FinishScenario handles DELETE /scenarios/current. The status defaults to PASSED.
func (s *Server) FinishScenario(w http.ResponseWriter, r *http.Request) {
	status, ok := s.status(w, r, "FinishScenario", domain.StatusPassed)
	if !ok {
		return
	}

	s.mu.Lock()
	s.reporter.FinishScenario(r.Context(), status)
	s.mu.Unlock()
	s.writeOK(w)
}

// BeginExamples handles POST /examples.
func (s *Server) BeginExamples(w http.ResponseWriter, r *http.Request) {
	var body ExamplesRequest
	if !s.decode(w, r, "BeginExamples", &body, false) {
		return
	}

	s.mu.Lock()
	s.reporter.BeginExamples(body.Steps)
	s.mu.Unlock()
	s.writeOK(w)
}

// Example handles PUT /examples/current.
func (s *Server) Example(w http.ResponseWriter, r *http.Request) {
	var body ExampleRequest
	if !s.decode(w, r, "Example", &body, false) {
		return
	}

	s.mu.Lock()
	s.reporter.Example(body.Label, body.Params)
	s.mu.Unlock()
	s.writeOK(w)
}

// EndExamples handles DELETE /examples.
func (s *Server) EndExamples(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.reporter.EndExamples()
	s.mu.Unlock()
	s.writeOK(w)
}

// StartStep handles POST /steps.
func (s *Server) StartStep(w http.ResponseWriter, r *http.Request) {
	var body StepRequest
	if !s.decode(w, r, "StartStep", &body, false) {
		return
	}

	s.mu.Lock()
	id := s.reporter.StartStep(r.Context(), body.Text)
	s.mu.Unlock()
	s.writeJSON(w, IDResponse{ID: id})
}

// FinishStep handles DELETE /steps/current. The status defaults to PASSED.
func (s *Server) FinishStep(w http.ResponseWriter, r *http.Request) {
	status, ok := s.status(w, r, "FinishStep", domain.StatusPassed)
	if !ok {
		return
	}

	s.mu.Lock()
	s.reporter.FinishStep(r.Context(), status)
	s.mu.Unlock()
	s.writeOK(w)
}

// Cleanup handles POST /cleanup. The status defaults to INTERRUPTED.
func (s *Server) Cleanup(w http.ResponseWriter, r *http.Request) {
	status, ok := s.status(w, r, "Cleanup", domain.StatusInterrupted)
	if !ok {
		return
	}

	s.mu.Lock()
	s.reporter.ForceFinishAllOpenItems(r.Context(), status)
	s.mu.Unlock()
	s.writeOK(w)
}

// -- Helpers --

// decode reads a JSON body into dst. An empty body is accepted only when optional.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	s.badRequest(w, op, err)
	return false
}

func (s *Server) status(w http.ResponseWriter, r *http.Request, op string, def domain.Status) (domain.Status, bool) {
	var body StatusRequest
	if !s.decode(w, r, op, &body, true) {
		return "", false
	}
	if body.Status == "" {
		return def, true
	}
	if !body.Status.Valid() {
		s.badRequest(w, op, fmt.Errorf("unknown status %q", body.Status))
		return "", false
	}
	return body.Status, true
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.logger.Warn(op+": Invalid request body", "err", err)
	http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
}

func (s *Server) writeOK(w http.ResponseWriter) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
