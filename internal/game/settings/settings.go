// Package settings provides the typed custom-property bag attached to
// players, roles, modules and the room's shared state.
package settings

import (
	"fmt"
	"sort"
)

// Kind enumerates the value types a Settings bag may hold.
type Kind int

const (
	KindString Kind = iota + 1
	KindBool
	KindNumber
)

type value struct {
	kind Kind
	s    string
	b    bool
	n    float64
}

// Settings is a string-keyed bag of string, bool and number values.
// Not safe for concurrent use.
type Settings struct {
	values map[string]value
}

// New returns an empty Settings.
func New() *Settings {
	return &Settings{values: make(map[string]value)}
}

func (s *Settings) set(key string, v value) {
	if s.values == nil {
		s.values = make(map[string]value)
	}
	s.values[key] = v
}

// SetString stores a string under key, replacing any previous value.
func (s *Settings) SetString(key, v string) { s.set(key, value{kind: KindString, s: v}) }

// SetBool stores a bool under key, replacing any previous value.
func (s *Settings) SetBool(key string, v bool) { s.set(key, value{kind: KindBool, b: v}) }

// SetNumber stores a number under key, replacing any previous value.
func (s *Settings) SetNumber(key string, v float64) { s.set(key, value{kind: KindNumber, n: v}) }

// Set stores v under key. v must be a string, bool or numeric type.
//
// Postcondition: Returns an error and leaves the bag unchanged for any other type.
func (s *Settings) Set(key string, v any) error {
	switch x := v.(type) {
	case string:
		s.SetString(key, x)
	case bool:
		s.SetBool(key, x)
	case int:
		s.SetNumber(key, float64(x))
	case int64:
		s.SetNumber(key, float64(x))
	case float32:
		s.SetNumber(key, float64(x))
	case float64:
		s.SetNumber(key, x)
	default:
		return fmt.Errorf("settings: unsupported value type %T for %q", v, key)
	}
	return nil
}

// String returns the string stored under key.
func (s *Settings) String(key string) (string, bool) {
	v, ok := s.values[key]
	if !ok || v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Bool returns the bool stored under key.
func (s *Settings) Bool(key string) (bool, bool) {
	v, ok := s.values[key]
	if !ok || v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Number returns the number stored under key.
func (s *Settings) Number(key string) (float64, bool) {
	v, ok := s.values[key]
	if !ok || v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// Get returns the value under key as a string, bool or float64.
func (s *Settings) Get(key string) (any, bool) {
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	switch v.kind {
	case KindString:
		return v.s, true
	case KindBool:
		return v.b, true
	default:
		return v.n, true
	}
}

// KindOf returns the kind stored under key, or 0 when absent.
func (s *Settings) KindOf(key string) Kind {
	return s.values[key].kind
}

// Has reports whether key holds a value.
func (s *Settings) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Delete removes key.
func (s *Settings) Delete(key string) {
	delete(s.values, key)
}

// Keys returns every key in sorted order.
func (s *Settings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored values.
func (s *Settings) Len() int {
	return len(s.values)
}
