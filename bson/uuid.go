// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"

	"github.com/google/uuid"

	"github.com/ikmak/bsondoc/bson/bsontype"
)

// ErrNotUUID is returned by BinaryPrimitive.UUID when the binary does not hold a UUID.
var ErrNotUUID = errors.New("bson: binary is not a UUID")

// UUID constructs a BSON binary Value of subtype 0x04 holding u.
func UUID(u uuid.UUID) Value {
	data := make([]byte, len(u))
	copy(data, u[:])
	return Binary(bsontype.BinaryUUID, data)
}

// NewUUID constructs a BSON binary Value holding a random (version 4) UUID.
func NewUUID() Value {
	return UUID(uuid.New())
}

// UUID returns the UUID held by a binary of subtype 0x03 or 0x04. The bytes of the legacy
// subtype are returned in the order they are stored.
func (bp BinaryPrimitive) UUID() (uuid.UUID, error) {
	if bp.Subtype != bsontype.BinaryUUID && bp.Subtype != bsontype.BinaryUUIDOld {
		return uuid.Nil, ErrNotUUID
	}
	u, err := uuid.FromBytes(bp.Data)
	if err != nil {
		return uuid.Nil, ErrNotUUID
	}
	return u, nil
}
