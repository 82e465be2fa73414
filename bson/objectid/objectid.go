// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0
//
// Based on gopkg.in/mgo.v2/bson by Gustavo Niemeyer
// See THIRD-PARTY-NOTICES for original license terms.

// Package objectid generates and parses 12-byte BSON ObjectIDs.
//
// An ObjectID is laid out as a 4-byte big-endian count of seconds since the Unix
// epoch, a 3-byte machine identifier, a 2-byte process identifier and a 3-byte
// counter. The machine identifier, process identifier and the counter's random
// seed are computed once per process, the first time an ObjectID is generated.
package objectid

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInvalidHex indicates that a hex string cannot be converted to an ObjectID.
var ErrInvalidHex = errors.New("the provided hex string is not a valid ObjectID")

// ObjectID is the BSON ObjectID type.
type ObjectID [12]byte

// NilObjectID is the zero value for ObjectID.
var NilObjectID ObjectID

type processState struct {
	machine [3]byte
	pid     [2]byte
	counter atomic.Uint32
}

var (
	stateOnce sync.Once
	state     processState
)

func processStateOnce() *processState {
	stateOnce.Do(func() {
		state.machine = readMachineID()
		pid := os.Getpid()
		state.pid[0] = byte(pid >> 8)
		state.pid[1] = byte(pid)
		state.counter.Store(readRandomUint32())
	})
	return &state
}

// New generates a new ObjectID.
func New() ObjectID {
	return NewFromTimestamp(time.Now())
}

// NewFromTimestamp generates a new ObjectID based on the given time.
func NewFromTimestamp(timestamp time.Time) ObjectID {
	ps := processStateOnce()

	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(timestamp.Unix()))
	copy(b[4:7], ps.machine[:])
	copy(b[7:9], ps.pid[:])
	putUint24(b[9:12], ps.counter.Add(1))

	return b
}

// FromHex creates a new ObjectID from a hex string. It returns an error if the hex string is not a
// valid ObjectID.
func FromHex(s string) (ObjectID, error) {
	if len(s) != 24 {
		return NilObjectID, ErrInvalidHex
	}

	var oid ObjectID
	if _, err := hex.Decode(oid[:], []byte(s)); err != nil {
		return NilObjectID, ErrInvalidHex
	}

	return oid, nil
}

// Hex returns the hex encoding of the ObjectID as a string.
func (id ObjectID) Hex() string {
	var buf [24]byte
	hex.Encode(buf[:], id[:])
	return string(buf[:])
}

// String returns the hex encoding of the ObjectID, so that FromHex(id.String()) == id.
func (id ObjectID) String() string {
	return id.Hex()
}

// IsZero returns true if id is the empty ObjectID.
func (id ObjectID) IsZero() bool {
	return id == NilObjectID
}

// Timestamp extracts the time part of the ObjectID.
func (id ObjectID) Timestamp() time.Time {
	unixSecs := binary.BigEndian.Uint32(id[0:4])
	return time.Unix(int64(unixSecs), 0).UTC()
}

// Machine returns the 3-byte machine identifier part of the ObjectID.
func (id ObjectID) Machine() [3]byte {
	var m [3]byte
	copy(m[:], id[4:7])
	return m
}

// Pid returns the process identifier part of the ObjectID.
func (id ObjectID) Pid() uint16 {
	return binary.BigEndian.Uint16(id[7:9])
}

// Counter returns the 24-bit counter part of the ObjectID.
func (id ObjectID) Counter() uint32 {
	return uint32(id[9])<<16 | uint32(id[10])<<8 | uint32(id[11])
}

// MarshalText returns the ObjectID as UTF-8-encoded hex text.
func (id ObjectID) MarshalText() ([]byte, error) {
	var buf [24]byte
	hex.Encode(buf[:], id[:])
	return buf[:], nil
}

// UnmarshalText parses a 24 character hex string into the ObjectID. An empty input leaves
// the ObjectID as NilObjectID.
func (id *ObjectID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = NilObjectID
		return nil
	}
	oid, err := FromHex(string(b))
	if err != nil {
		return err
	}
	*id = oid
	return nil
}

// MarshalJSON returns the ObjectID as a JSON string.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	var buf [26]byte
	buf[0] = '"'
	hex.Encode(buf[1:25], id[:])
	buf[25] = '"'
	return buf[:], nil
}

// UnmarshalJSON accepts either a JSON string holding the hex form of the ObjectID or the
// extended JSON object {"$oid": "<hex>"}. A JSON null leaves id unchanged.
func (id *ObjectID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		return id.UnmarshalText(b[1 : len(b)-1])
	}

	var v struct {
		OID *string `json:"$oid"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("failed to parse extended JSON ObjectID: %w", err)
	}
	if v.OID == nil {
		return errors.New("not an extended JSON ObjectID")
	}
	oid, err := FromHex(*v.OID)
	if err != nil {
		return err
	}
	*id = oid
	return nil
}

// readMachineID hashes the hostname so that processes on one host share the machine bytes.
// Random bytes are used when the hostname cannot be read.
func readMachineID() [3]byte {
	var id [3]byte
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		if _, err := io.ReadFull(rand.Reader, id[:]); err != nil {
			panic(fmt.Errorf("cannot initialize objectid package with crypto.rand.Reader: %w", err))
		}
		return id
	}
	sum := md5.Sum([]byte(hostname))
	copy(id[:], sum[:3])
	return id
}

func readRandomUint32() uint32 {
	var b [4]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic(fmt.Errorf("cannot initialize objectid package with crypto.rand.Reader: %w", err))
	}

	return binary.LittleEndian.Uint32(b[:])
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
