// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strconv"

	"github.com/ikmak/bsondoc/bson/bsontype"
)

// Document is a mutable ordered map that represents a BSON document. Keys are unique and
// elements keep the order in which their keys were first inserted.
//
// The zero value is an empty document ready to use.
type Document struct {
	elems []Element
	index map[string]int
}

// NewDocument creates a document holding elems. A later element with the same key as an
// earlier one replaces its value in place.
func NewDocument(elems ...Element) *Document {
	doc := &Document{
		elems: make([]Element, 0, len(elems)),
		index: make(map[string]int, len(elems)),
	}
	for _, elem := range elems {
		doc.Set(elem.Key, elem.Value)
	}
	return doc
}

// Len returns the number of elements in the document.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}

	return len(d.elems)
}

// Keys returns the keys of the document in order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.elems))
	for _, elem := range d.elems {
		keys = append(keys, elem.Key)
	}
	return keys
}

// Elements returns a copy of the document's elements in order.
func (d *Document) Elements() []Element {
	if d == nil {
		return nil
	}
	elems := make([]Element, len(d.elems))
	copy(elems, d.elems)
	return elems
}

// Index retrieves the element at the given index in a Document. It panics if the index is
// out-of-bounds or if d is nil.
func (d *Document) Index(index uint) Element {
	return d.elems[index]
}

// IndexOK is the same as Index, but returns a boolean instead of panicking.
func (d *Document) IndexOK(index uint) (Element, bool) {
	if d == nil || index >= uint(len(d.elems)) {
		return Element{}, false
	}
	return d.elems[index], true
}

// Set stores val under key. If the key is already present its value is replaced and the
// element keeps its position, otherwise the element is appended. Set returns d so calls can
// be chained.
func (d *Document) Set(key string, val Value) *Document {
	d.Insert(key, val)
	return d
}

// Append is the same as Set. It is provided so documents can be built in the order their
// elements are written.
func (d *Document) Append(key string, val Value) *Document {
	return d.Set(key, val)
}

// Insert is the same as Set but returns the value that was replaced and whether there was one.
func (d *Document) Insert(key string, val Value) (Value, bool) {
	if d.index == nil {
		d.index = make(map[string]int, len(d.elems))
		for i, elem := range d.elems {
			d.index[elem.Key] = i
		}
	}

	if i, ok := d.index[key]; ok {
		old := d.elems[i].Value
		d.elems[i].Value = val
		return old, true
	}

	d.index[key] = len(d.elems)
	d.elems = append(d.elems, Element{Key: key, Value: val})
	return Value{}, false
}

// Contains reports whether key is present in the document.
func (d *Document) Contains(key string) bool {
	_, ok := d.lookup(key)
	return ok
}

// Delete removes key from the document and returns its value. The elements after it keep
// their relative order. Deleting a missing key is a no-op that returns false.
func (d *Document) Delete(key string) (Value, bool) {
	i, ok := d.lookup(key)
	if !ok {
		return Value{}, false
	}

	val := d.elems[i].Value
	copy(d.elems[i:], d.elems[i+1:])
	d.elems[len(d.elems)-1] = Element{}
	d.elems = d.elems[:len(d.elems)-1]

	delete(d.index, key)
	for j := i; j < len(d.elems); j++ {
		d.index[d.elems[j].Key] = j
	}
	return val, true
}

func (d *Document) lookup(key string) (int, bool) {
	if d == nil {
		return 0, false
	}
	if d.index == nil {
		for i, elem := range d.elems {
			if elem.Key == key {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := d.index[key]
	return i, ok
}

// Lookup searches the document and potentially subdocuments or arrays for the
// provided key. Each key provided to this method represents a layer of depth.
//
// This method will return an empty Value if they key does not exist. To know if they key actually
// exists, use LookupErr.
func (d *Document) Lookup(key ...string) Value {
	val, _ := d.LookupErr(key...)
	return val
}

// LookupErr searches the document and potentially subdocuments or arrays for the
// provided key. Each key provided to this method represents a layer of depth. Array
// elements are addressed by their decimal index.
func (d *Document) LookupErr(key ...string) (Value, error) {
	if len(key) == 0 {
		return Value{}, KeyNotFound{Key: key}
	}

	i, ok := d.lookup(key[0])
	if !ok {
		return Value{}, KeyNotFound{Key: key}
	}

	val, err := traverse(d.elems[i].Value, key[1:])
	if knf, ok := err.(KeyNotFound); ok {
		knf.Depth++
		knf.Key = key
		return Value{}, knf
	}
	return val, err
}

// traverse follows the remaining keys below val. KeyNotFound errors are created where the
// lookup fails and have their depth incremented by each layer as the calls unwind.
func traverse(val Value, key []string) (Value, error) {
	if len(key) == 0 {
		return val, nil
	}

	switch val.Type() {
	case bsontype.EmbeddedDocument:
		return val.Document().LookupErr(key...)
	case bsontype.Array:
		arr := val.Array()
		index, err := strconv.ParseUint(key[0], 10, 0)
		if err != nil || index >= uint64(arr.Len()) {
			return Value{}, KeyNotFound{Key: key}
		}
		next, err := traverse(arr.values[index], key[1:])
		if knf, ok := err.(KeyNotFound); ok {
			knf.Depth++
			knf.Key = key
			return Value{}, knf
		}
		return next, err
	default:
		return Value{}, KeyNotFound{Key: key, Type: val.Type()}
	}
}

// Iterator returns an Iterator over the document's elements in order.
func (d *Document) Iterator() *Iterator {
	return &Iterator{d: d}
}

// Reset clears a document so it can be reused.
func (d *Document) Reset() {
	if d == nil {
		return
	}

	for idx := range d.elems {
		d.elems[idx] = Element{}
	}
	d.elems = d.elems[:0]
	for key := range d.index {
		delete(d.index, key)
	}
}

// Copy makes a deep copy of this document.
func (d *Document) Copy() *Document {
	if d == nil {
		return nil
	}

	doc := &Document{
		elems: make([]Element, len(d.elems)),
		index: make(map[string]int, len(d.elems)),
	}
	for i, elem := range d.elems {
		doc.elems[i] = Element{Key: elem.Key, Value: elem.Value.Copy()}
		doc.index[elem.Key] = i
	}
	return doc
}

// Equal compares this document to another, returning true if they hold equal elements in
// the same order.
func (d *Document) Equal(d2 *Document) bool {
	if d == nil && d2 == nil {
		return true
	}

	if d == nil || d2 == nil {
		return false
	}

	if len(d.elems) != len(d2.elems) {
		return false
	}
	for index := range d.elems {
		if !d.elems[index].Equal(d2.elems[index]) {
			return false
		}
	}
	return true
}

// String returns the relaxed extended JSON form of the document.
func (d *Document) String() string {
	if d == nil {
		return "<nil>"
	}
	return EmbedDocument(d).String()
}

// Iterator facilitates iterating over a bson.Document.
type Iterator struct {
	d     *Document
	index int
	elem  Element
}

// Next fetches the next element of the document, returning whether or not the next element was able
// to be fetched. If true is returned, then call Element to get the element.
func (itr *Iterator) Next() bool {
	if itr.index >= itr.d.Len() {
		return false
	}

	itr.elem = itr.d.elems[itr.index]
	itr.index++
	return true
}

// Element returns the current element of the Iterator.
func (itr *Iterator) Element() Element {
	return itr.elem
}
