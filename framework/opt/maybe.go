// Package opt provides an optional value type used wherever a missing value is a normal
// outcome rather than an error: configuration keys, element attributes, suite parameters.
package opt

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Maybe holds either a value or nothing.
type Maybe[V any] struct {
	defined bool
	value   V
}

func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

func None[V any]() Maybe[V] { return Maybe[V]{} }

// NonEmpty returns Some(s) unless s is empty.
func NonEmpty(s string) Maybe[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

// FromPtr returns Some(*ptr), or None if ptr is nil.
func FromPtr[V any](ptr *V) Maybe[V] {
	if ptr != nil {
		return Some(*ptr)
	}
	return None[V]()
}

func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value, or the zero value of V if there is none.
func (m Maybe[V]) Value() V { return m.value }

// Get returns the value and whether it is defined, in the style of a map lookup.
func (m Maybe[V]) Get() (V, bool) { return m.value, m.defined }

func (m Maybe[V]) OrElse(valueIfUndefined V) V {
	if m.defined {
		return m.value
	}
	return valueIfUndefined
}

// Or returns m if it is defined, or else other.
func (m Maybe[V]) Or(other Maybe[V]) Maybe[V] {
	if m.defined {
		return m
	}
	return other
}

func (m Maybe[V]) String() string {
	if !m.defined {
		return "[none]"
	}
	var v interface{} = m.value
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", m.value)
}

// UnmarshalYAML leaves the Maybe undefined for an explicit null and otherwise decodes a V.
// A key that is absent from the document never calls this, so it stays undefined too.
func (m *Maybe[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = None[V]()
		return nil
	}
	var value V
	if err := node.Decode(&value); err != nil {
		return err
	}
	*m = Some(value)
	return nil
}
