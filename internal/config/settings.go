package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Map is a mapping that remembers insertion order. Job specs, their nested
// mappings (options, environment, per-step overrides) and CLI override sets
// are all Maps, so baked option flags and job listings come out in the order
// they were written.
type Map struct {
	keys []string
	vals map[string]any
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{vals: make(map[string]any)}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.vals[key]
	return ok
}

// Get returns the value for key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Set stores key=val, appending key to the order if it is new.
func (m *Map) Set(key string, val any) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = val
}

// Delete removes key if present.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// GetString returns the value for key if it is a string.
func (m *Map) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the value for key if it is a bool.
func (m *Map) GetBool(key string) (bool, bool) {
	v, ok := m.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Bool returns true when key is present and literally true.
func (m *Map) Bool(key string) bool {
	b, _ := m.GetBool(key)
	return b
}

// GetMap returns the value for key if it is a nested Map.
func (m *Map) GetMap(key string) (*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Map)
	return sub, ok
}

// GetStringSlice returns the value for key if it is a sequence, with every
// element rendered as a string.
func (m *Map) GetStringSlice(key string) ([]string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(seq))
	for i, item := range seq {
		out[i] = fmt.Sprintf("%v", item)
	}
	return out, true
}

// GetPath resolves a dotted path through nested Maps.
func (m *Map) GetPath(path string) (any, bool) {
	cur := m
	parts := strings.Split(path, ".")
	for i, part := range parts {
		v, ok := cur.Get(part)
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		cur, ok = v.(*Map)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

// SetPath stores val under a dotted path, creating nested Maps as needed.
func (m *Map) SetPath(path string, val any) {
	first, rest, found := strings.Cut(path, ".")
	if !found {
		m.Set(first, val)
		return
	}
	sub, ok := m.GetMap(first)
	if !ok {
		sub = NewMap()
		m.Set(first, sub)
	}
	sub.SetPath(rest, val)
}

// Clone returns a deep copy. Nested Maps are copied recursively; sequences
// are copied element-wise.
func (m *Map) Clone() *Map {
	if m == nil {
		return NewMap()
	}
	out := NewMap()
	for _, k := range m.keys {
		out.Set(k, cloneValue(m.vals[k]))
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Merge deep-merges overrides into m. Where both sides hold a nested Map the
// merge recurses; any other collision is overwritten by the override. Keys
// present only in m are never dropped.
func (m *Map) Merge(overrides *Map) {
	if overrides == nil {
		return
	}
	for _, k := range overrides.keys {
		nv := overrides.vals[k]
		if oldSub, ok := m.GetMap(k); ok {
			if newSub, ok := nv.(*Map); ok {
				oldSub.Merge(newSub)
				continue
			}
		}
		m.Set(k, cloneValue(nv))
	}
}

// MergeUnder merges m's own entries on top of defaults: the result keeps
// defaults' entries except where m overrides them, and m is rewritten in
// place to that result. Used for `base` inheritance.
func (m *Map) MergeUnder(defaults *Map) {
	merged := defaults.Clone()
	merged.Merge(m)
	m.keys = merged.keys
	m.vals = merged.vals
}

// String renders the Map in a compact single-line form, for logs and
// template interpolation of whole-mapping values.
func (m *Map) String() string {
	if m == nil {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, m.vals[k])
	}
	b.WriteByte('}')
	return b.String()
}

// decodeNode converts a parsed YAML node into Go values, turning mappings
// into Maps so document order survives.
func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewMap(), nil
		}
		return decodeNode(n.Content[0])
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("decode mapping key at line %d: %w", n.Content[i].Line, err)
			}
			val, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			val, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode scalar at line %d: %w", n.Line, err)
		}
		return v, nil
	}
}

// ParseDocument parses YAML bytes into an order-preserving Map.
func ParseDocument(data []byte) (*Map, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if root.Kind == 0 {
		return NewMap(), nil
	}
	v, err := decodeNode(&root)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*Map)
	if !ok {
		if v == nil {
			return NewMap(), nil
		}
		return nil, fmt.Errorf("document root must be a mapping, got %T", v)
	}
	return m, nil
}
