package domain

import "strings"

// MetaProperty is a single key/value tag. A nil Value is a flag without value.
type MetaProperty struct {
	Key   string  `json:"key" yaml:"key"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Meta is an ordered set of properties, iterated in insertion order.
type Meta []MetaProperty

// ParseMeta builds a Meta from engine-style meta lines such as "@id 5" or "@smoke".
// The leading '@' is optional; everything after the first run of whitespace is the value.
// Blank lines are skipped.
func ParseMeta(lines ...string) Meta {
	var m Meta
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "@"))
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, " ")
		if !found {
			m.SetFlag(key)
			continue
		}
		m.Set(key, strings.TrimSpace(value))
	}
	return m
}

// Set stores a valued property. An existing key keeps its position.
func (m *Meta) Set(key, value string) {
	m.put(key, &value)
}

// SetFlag stores a property without value.
func (m *Meta) SetFlag(key string) {
	m.put(key, nil)
}

func (m *Meta) put(key string, value *string) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MetaProperty{Key: key, Value: value})
}

// Get returns the value for key. ok is false when the key is absent or has no value.
func (m Meta) Get(key string) (value string, ok bool) {
	for _, p := range m {
		if p.Key == key {
			if p.Value == nil {
				return "", false
			}
			return *p.Value, true
		}
	}
	return "", false
}

// Has reports whether the key is present, with or without value.
func (m Meta) Has(key string) bool {
	for _, p := range m {
		if p.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the property names in insertion order.
func (m Meta) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, p := range m {
		keys = append(keys, p.Key)
	}
	return keys
}

// Map flattens the properties into a map. Flags map to the empty string.
func (m Meta) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, p := range m {
		if p.Value == nil {
			out[p.Key] = ""
			continue
		}
		out[p.Key] = *p.Value
	}
	return out
}

// MergeMaps flattens several metas into one map; later metas win on duplicate keys.
func MergeMaps(metas ...Meta) map[string]string {
	out := make(map[string]string)
	for _, m := range metas {
		for k, v := range m.Map() {
			out[k] = v
		}
	}
	return out
}

// Clone returns a copy that shares no storage with m.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for i, p := range m {
		out[i] = MetaProperty{Key: p.Key}
		if p.Value != nil {
			v := *p.Value
			out[i].Value = &v
		}
	}
	return out
}
