// Package script replays recorded test-engine lifecycle streams against a reporter.
//
// A script is a YAML document with an optional launch block and a list of
// events, each naming an operation and its arguments. Scripts are tooling: they
// are validated strictly when parsed, unlike the reporting path itself.
package script

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/storyline/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownOp is returned for an event whose op is not recognized.
	ErrUnknownOp = errors.New("unknown op")
	// ErrInvalidArgs is returned when an event's args do not match its op.
	ErrInvalidArgs = errors.New("invalid args")
)

// Op names one lifecycle operation.
type Op string

const (
	OpStartLaunch    Op = "start_launch"
	OpFinishLaunch   Op = "finish_launch"
	OpStartStory     Op = "start_story"
	OpFinishStory    Op = "finish_story"
	OpScenarioMeta   Op = "scenario_meta"
	OpStartScenario  Op = "start_scenario"
	OpFinishScenario Op = "finish_scenario"
	OpBeginExamples  Op = "begin_examples"
	OpExample        Op = "example"
	OpEndExamples    Op = "end_examples"
	OpStartStep      Op = "start_step"
	OpFinishStep     Op = "finish_step"
	OpCleanup        Op = "cleanup"
)

// StoryArgs are the args of start_story.
type StoryArgs struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	Meta        []string `mapstructure:"meta"`
	Given       bool     `mapstructure:"given"`
}

// ScenarioArgs are the args of start_scenario. Meta, when present, is set before the start.
type ScenarioArgs struct {
	Name string   `mapstructure:"name"`
	Meta []string `mapstructure:"meta"`
}

// MetaArgs are the args of scenario_meta.
type MetaArgs struct {
	Meta []string `mapstructure:"meta"`
}

// ExamplesArgs are the args of begin_examples.
type ExamplesArgs struct {
	Steps []string `mapstructure:"steps"`
}

// ExampleArgs are the args of example.
type ExampleArgs struct {
	Label  string            `mapstructure:"label"`
	Params map[string]string `mapstructure:"params"`
}

// StepArgs are the args of start_step.
type StepArgs struct {
	Text string `mapstructure:"text"`
}

// StatusArgs are the args of finish_scenario, finish_step and cleanup.
// An empty status means the op's default.
type StatusArgs struct {
	Status domain.Status `mapstructure:"status"`
}

// NoArgs is used by ops that take no arguments.
type NoArgs struct{}

// Event is one decoded lifecycle operation. Args holds the typed args struct for Op.
type Event struct {
	Op   Op
	Args any
}

// Script is a parsed replay script.
type Script struct {
	Launch domain.LaunchSpec
	Events []Event
}

// HasLaunch reports whether the script opens its own launch.
func (s *Script) HasLaunch() bool {
	for _, e := range s.Events {
		if e.Op == OpStartLaunch {
			return true
		}
	}
	return false
}

type rawScript struct {
	Launch map[string]any `yaml:"launch"`
	Events []rawEvent     `yaml:"events"`
}

type rawEvent struct {
	Op   Op             `yaml:"op"`
	Args map[string]any `yaml:"args"`
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML script and validates every event.
func Parse(data []byte) (*Script, error) {
	var raw rawScript
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	s := &Script{Events: make([]Event, 0, len(raw.Events))}
	if err := decodeArgs(raw.Launch, &s.Launch); err != nil {
		return nil, fmt.Errorf("launch: %w", err)
	}
	if err := validateLaunch(s.Launch); err != nil {
		return nil, fmt.Errorf("launch: %w", err)
	}

	for i, re := range raw.Events {
		ev, err := decodeEvent(re)
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, re.Op, err)
		}
		s.Events = append(s.Events, ev)
	}
	return s, nil
}

func decodeEvent(re rawEvent) (Event, error) {
	var args any
	switch re.Op {
	case OpStartLaunch:
		var a domain.LaunchSpec
		if err := decodeArgs(re.Args, &a); err != nil {
			return Event{}, err
		}
		if err := validateLaunch(a); err != nil {
			return Event{}, err
		}
		args = a
	case OpStartStory:
		var a StoryArgs
		if err := decodeArgs(re.Args, &a); err != nil {
			return Event{}, err
		}
		args = a
	case OpScenarioMeta:
		var a MetaArgs
		if err := decodeArgs(re.Args, &a); err != nil {
			return Event{}, err
		}
		args = a
	case OpStartScenario:
		var a ScenarioArgs
		if err := decodeArgs(re.Args, &a); err != nil {
			return Event{}, err
		}
		args = a
	case OpBeginExamples:
		var a ExamplesArgs
		if err := decodeArgs(re.Args, &a); err != nil {
			return Event{}, err
		}
		args = a
	case OpExample:
		var a ExampleArgs
		if err := decodeArgs(re.Args, &a); err != nil {
			return Event{}, err
		}
		args = a
	case OpStartStep:
		var a StepArgs
		if err := decodeArgs(re.Args, &a); err != nil {
			return Event{}, err
		}
		args = a
	case OpFinishScenario, OpFinishStep, OpCleanup:
		var a StatusArgs
		if err := decodeArgs(re.Args, &a); err != nil {
			return Event{}, err
		}
		if a.Status != "" && !a.Status.Valid() {
			return Event{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgs, a.Status)
		}
		args = a
	case OpFinishLaunch, OpFinishStory, OpEndExamples:
		if len(re.Args) > 0 {
			return Event{}, fmt.Errorf("%w: %s takes no args", ErrInvalidArgs, re.Op)
		}
		args = NoArgs{}
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownOp, re.Op)
	}
	return Event{Op: re.Op, Args: args}, nil
}

// decodeArgs maps a YAML args block onto a typed struct. Unknown keys are errors;
// scalars are converted loosely so `n: 3` fills a string parameter.
func decodeArgs(in map[string]any, out any) error {
	if len(in) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	return nil
}

func validateLaunch(spec domain.LaunchSpec) error {
	if spec.Mode != "" && !spec.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidArgs, spec.Mode)
	}
	return nil
}
