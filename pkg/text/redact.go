package text

import (
	"fmt"
	"regexp"

	"github.com/aretw0/storyline/pkg/domain"
)

// Mask replaces redacted values.
const Mask = "***"

// Redactor masks the values of metadata and example parameters whose key
// matches one of its patterns. It works on the properties themselves, before
// they are joined into descriptions or expanded into names, so values with
// spaces and link values are masked whole.
//
// A nil Redactor masks nothing.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles the key patterns.
func NewRedactor(patternStrings []string) (*Redactor, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return &Redactor{patterns: patterns}, nil
}

// Sensitive reports whether values stored under key are masked.
func (r *Redactor) Sensitive(key string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// Meta returns a copy of meta with sensitive values masked. Flags stay flags.
func (r *Redactor) Meta(meta domain.Meta) domain.Meta {
	out := meta.Clone()
	for i, p := range out {
		if p.Value != nil && r.Sensitive(p.Key) {
			masked := Mask
			out[i].Value = &masked
		}
	}
	return out
}

// Params returns a copy of params with sensitive values masked.
func (r *Redactor) Params(params map[string]string) map[string]string {
	if params == nil {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		if r.Sensitive(k) {
			v = Mask
		}
		out[k] = v
	}
	return out
}
