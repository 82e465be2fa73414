// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package objectid

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNew(t *testing.T) {
	// Ensure that objectid.New() doesn't panic.
	New()
}

func TestString(t *testing.T) {
	id := New()
	require.Equal(t, id.Hex(), id.String())
	require.Len(t, id.String(), 24)
}

func TestFromHex_RoundTrip(t *testing.T) {
	before := New()
	after, err := FromHex(before.String())
	require.NoError(t, err)

	require.Equal(t, before, after)
}

func TestFromHex_InvalidHex(t *testing.T) {
	testCases := []struct {
		name string
		hex  string
	}{
		{"not hex", "this is not a valid hex!"},
		{"one bad character", "5a934e000102030405060z07"},
		{"too short", "deadbeef"},
		{"too long", "5a934e00010203040506070800"},
		{"empty", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromHex(tc.hex)
			require.Equal(t, ErrInvalidHex, err)
		})
	}
}

func TestFromHex_UpperCase(t *testing.T) {
	id, err := FromHex("5A934E000102030405060708")
	require.NoError(t, err)
	require.Equal(t, "5a934e000102030405060708", id.Hex())
}

func TestTimeStamp(t *testing.T) {
	testCases := []struct {
		Hex      string
		Expected string
	}{
		{
			"000000001111111111111111",
			"1970-01-01 00:00:00 +0000 UTC",
		},
		{
			"7FFFFFFF1111111111111111",
			"2038-01-19 03:14:07 +0000 UTC",
		},
		{
			"800000001111111111111111",
			"2038-01-19 03:14:08 +0000 UTC",
		},
		{
			"FFFFFFFF1111111111111111",
			"2106-02-07 06:28:15 +0000 UTC",
		},
	}

	for _, testcase := range testCases {
		id, err := FromHex(testcase.Hex)
		require.NoError(t, err)
		require.Equal(t, testcase.Expected, id.Timestamp().String())
	}
}

func TestLayout(t *testing.T) {
	ts := time.Date(2020, time.March, 1, 12, 0, 0, 0, time.UTC)
	first := NewFromTimestamp(ts)
	second := NewFromTimestamp(ts)

	require.Equal(t, uint32(ts.Unix()), binary.BigEndian.Uint32(first[0:4]))
	require.True(t, ts.Equal(first.Timestamp()))
	require.Equal(t, first.Machine(), second.Machine())
	require.Equal(t, first.Pid(), second.Pid())
	require.Equal(t, (first.Counter()+1)&0xFFFFFF, second.Counter())
}

func TestCounterOverflow(t *testing.T) {
	ps := processStateOnce()
	ps.counter.Store(0x00FFFFFE)

	last := New()
	wrapped := New()
	require.Equal(t, uint32(0xFFFFFF), last.Counter())
	require.Equal(t, uint32(0), wrapped.Counter())

	ps.counter.Store(0xFFFFFFFF)
	require.Equal(t, uint32(0), New().Counter())
}

func TestUniqueSequential(t *testing.T) {
	const n = 100000
	seen := make(map[ObjectID]struct{}, n)
	for i := 0; i < n; i++ {
		seen[New()] = struct{}{}
	}
	require.Len(t, seen, n)
}

func TestUniqueConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 12500

	results := make([][]ObjectID, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			ids := make([]ObjectID, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, New())
			}
			results[w] = ids
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[ObjectID]struct{}, workers*perWorker)
	for _, ids := range results {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	require.Len(t, seen, workers*perWorker)
}

func TestTextAndJSON(t *testing.T) {
	id := New()

	text, err := id.MarshalText()
	require.NoError(t, err)
	var fromText ObjectID
	require.NoError(t, fromText.UnmarshalText(text))
	require.Equal(t, id, fromText)

	var empty ObjectID
	require.NoError(t, empty.UnmarshalText(nil))
	require.True(t, empty.IsZero())

	b, err := json.Marshal(id)
	require.NoError(t, err)
	require.Equal(t, `"`+id.Hex()+`"`, string(b))

	var fromJSON ObjectID
	require.NoError(t, json.Unmarshal(b, &fromJSON))
	require.Equal(t, id, fromJSON)

	var fromExt ObjectID
	require.NoError(t, json.Unmarshal([]byte(`{"$oid":"`+id.Hex()+`"}`), &fromExt))
	require.Equal(t, id, fromExt)

	var bad ObjectID
	err = json.Unmarshal([]byte(`{"oid":"`+id.Hex()+`"}`), &bad)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "not an extended JSON ObjectID"))
}
