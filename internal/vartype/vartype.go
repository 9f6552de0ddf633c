// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package vartype provides a value wrapper that tells a measured zero apart from a value
// the upstream never supplied.
package vartype

import (
	"fmt"
)

type (
	// VarFloat64 holds a numeric measurement like temperature or wind speed.
	VarFloat64 = Variable[float64]

	// VarString holds a textual observation like the sky condition.
	VarString = Variable[string]
)

// Unset is the placeholder that String returns for a Variable that holds no value.
const Unset = "n/a"

// Variable holds a value and whether it was ever set. The zero Variable is unset.
type Variable[T any] struct {
	value T
	isset bool
}

// NewVariable returns a Variable that is set to value.
func NewVariable[T any](value T) Variable[T] {
	return Variable[T]{
		isset: true,
		value: value,
	}
}

// Set stores val and marks the Variable as set.
func (v *Variable[T]) Set(val T) {
	v.value = val
	v.isset = true
}

// Reset clears the value and marks the Variable as unset.
func (v *Variable[T]) Reset() {
	*v = Variable[T]{}
}

// Value returns the stored value, or the zero value of T if the Variable is unset.
func (v Variable[T]) Value() T {
	return v.value
}

// IsSet reports whether a value was set.
func (v Variable[T]) IsSet() bool {
	return v.isset
}

// ValueOr returns the stored value or fallback if the Variable is not set.
func (v Variable[T]) ValueOr(fallback T) T {
	if !v.isset {
		return fallback
	}
	return v.value
}

// String returns the value formatted with fmt.Sprint, or Unset.
func (v Variable[T]) String() string {
	if !v.isset {
		return Unset
	}
	return fmt.Sprint(v.value)
}
