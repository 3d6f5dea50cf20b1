// Package text holds the pure string helpers used to build item names and descriptions.
package text

import (
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/storyline/pkg/domain"
)

// MaxNameLength is the longest item name the reporting service displays.
const MaxNameLength = 256

const (
	keyValueSeparator = ":"
	metaSeparator     = " "
)

// parameterPattern matches <name> placeholders, non-greedy.
var parameterPattern = regexp.MustCompile(`<(.*?)>`)

// Truncate cuts names longer than MaxNameLength down to MaxNameLength-1 characters.
// No ellipsis is added. Length is counted in characters, not bytes.
func Truncate(name string) string {
	runes := []rune(name)
	if len(runes) > MaxNameLength {
		return string(runes[:MaxNameLength-1])
	}
	return name
}

// ExpandParameters replaces every <key> token whose key is present in params.
// Tokens without a matching key are kept literally, delimiters included.
func ExpandParameters(text string, params map[string]string) string {
	if len(params) == 0 {
		return text
	}
	return parameterPattern.ReplaceAllStringFunc(text, func(token string) string {
		if value, ok := params[token[1:len(token)-1]]; ok {
			return value
		}
		return token
	})
}

// JoinMeta renders a metadata set as space separated key:value pairs in insertion order.
func JoinMeta(meta domain.Meta) string {
	parts := make([]string, 0, len(meta))
	for _, p := range meta {
		parts = append(parts, JoinPair(p.Key, p.Value))
	}
	return strings.Join(parts, metaSeparator)
}

// JoinMetas joins each metadata set on its own and concatenates the results with a space.
// Duplicate keys across sets are kept; empty sets still contribute their (empty) part.
func JoinMetas(metas ...domain.Meta) string {
	parts := make([]string, 0, len(metas))
	for _, m := range metas {
		parts = append(parts, JoinMeta(m))
	}
	return strings.Join(parts, metaSeparator)
}

// JoinParams renders example parameters as key:value pairs ordered by key.
func JoinParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := params[k]
		parts = append(parts, JoinPair(k, &v))
	}
	return strings.Join(parts, metaSeparator)
}

// JoinPair renders one property.
//
// A nil value renders as the bare key. Values starting with "http" become a
// link labelled with the key, or with key:<last path segment> for jira links.
func JoinPair(key string, value *string) string {
	if value == nil {
		return key
	}
	lower := strings.ToLower(*value)
	if !strings.HasPrefix(lower, "http") {
		return key + keyValueSeparator + *value
	}
	label := key
	if strings.Contains(lower, "jira") {
		label = key + keyValueSeparator + afterLast(*value, "/")
	}
	return Link(*value, label)
}

// Link wraps text in an HTML anchor pointing at href.
func Link(href, text string) string {
	return `<a href="` + href + `">` + text + `</a>`
}

func afterLast(s, sep string) string {
	i := strings.LastIndex(s, sep)
	if i < 0 || i == len(s)-len(sep) {
		return ""
	}
	return s[i+len(sep):]
}
