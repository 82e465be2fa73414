// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// Array represents an array in BSON. On the wire its elements are keyed "0", "1", ... in order.
type Array struct {
	values []Value
}

// NewArray creates a new array with the specified value.
func NewArray(values ...Value) *Array {
	arr := &Array{values: make([]Value, len(values))}
	copy(arr.values, values)
	return arr
}

// Len returns the number of elements in the array.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// Reset clears all elements from the array.
func (a *Array) Reset() {
	if a == nil {
		return
	}

	for idx := range a.values {
		a.values[idx] = Value{}
	}
	a.values = a.values[:0]
}

// Index functions in a similar way to a Go native array or slice, that is, if the given index is
// out of bounds, this method will panic. Len can be used to retrieve the length of this Array.
func (a *Array) Index(index uint) Value { return a.values[index] }

// IndexOK is the same as Index, but returns a boolean instead of panicking.
func (a *Array) IndexOK(index uint) (Value, bool) {
	if a == nil || index >= uint(len(a.values)) {
		return Value{}, false
	}
	return a.values[index], true
}

// Values returns a copy of the array's values in order.
func (a *Array) Values() []Value {
	if a == nil {
		return nil
	}
	values := make([]Value, len(a.values))
	copy(values, a.values)
	return values
}

// Append adds the given values to the end of the array.
//
// Append is safe to call on a nil Array.
func (a *Array) Append(values ...Value) *Array {
	if a == nil {
		a = &Array{values: make([]Value, 0, len(values))}
	}
	a.values = append(a.values, values...)
	return a
}

// Set replaces the value at the given index with the parameter value. It panics if the index is
// out of bounds.
func (a *Array) Set(index uint, value Value) *Array {
	a.values[index] = value
	return a
}

// Delete removes the value at the given index from the array. Later values shift down by one.
// It returns false if the index is out of bounds.
func (a *Array) Delete(index uint) (Value, bool) {
	if a == nil || index >= uint(len(a.values)) {
		return Value{}, false
	}

	value := a.values[index]
	copy(a.values[index:], a.values[index+1:])
	a.values[len(a.values)-1] = Value{}
	a.values = a.values[:len(a.values)-1]

	return value, true
}

// Copy makes a deep copy of this array.
func (a *Array) Copy() *Array {
	if a == nil {
		return nil
	}
	arr := &Array{values: make([]Value, len(a.values))}
	for idx, val := range a.values {
		arr.values[idx] = val.Copy()
	}
	return arr
}

// Equal compares this array to another, returning true if they are equal.
func (a *Array) Equal(a2 *Array) bool {
	if a == nil && a2 == nil {
		return true
	}

	if a == nil || a2 == nil {
		return false
	}

	if len(a.values) != len(a2.values) {
		return false
	}

	for idx := range a.values {
		if !a.values[idx].Equal(a2.values[idx]) {
			return false
		}
	}

	return true
}

// String returns the relaxed extended JSON form of the array.
func (a *Array) String() string {
	if a == nil {
		return "<nil>"
	}
	return EmbedArray(a).String()
}
