// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0
//
// Based on gopkg.in/mgo.v2/bson by Gustavo Niemeyer
// See THIRD-PARTY-NOTICES for original license terms.

// Package decimal holds the 128-bit IEEE 754-2008 decimal type used by BSON.
//
// Values are stored and compared bit for bit. The package converts between the
// binary integer decimal encoding and its string form but implements no arithmetic.
package decimal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Exponent limits of a finite Decimal128.
const (
	MaxDecimal128Exp = 6111
	MinDecimal128Exp = -6176
)

const (
	exponentBias = 6176
	exponentMask = 1<<14 - 1
	maxDigits    = 34
)

// maxCoefficient is 10^34 - 1, the largest canonical significand.
var maxCoefficient = new(big.Int).Sub(new(big.Int).Exp(big.NewInt(10), big.NewInt(maxDigits), nil), big.NewInt(1))

// ErrParse is returned when a string cannot be represented exactly as a Decimal128.
var ErrParse = errors.New("cannot parse string as a decimal128")

// Decimal128 holds decimal128 BSON values.
type Decimal128 struct {
	h, l uint64
}

// NewDecimal128 creates a Decimal128 using the provide high and low uint64s.
func NewDecimal128(h, l uint64) Decimal128 {
	return Decimal128{h: h, l: l}
}

// GetBytes returns the underlying bytes of the BSON decimal value as two uint64 values. The first
// contains the high 64 bits and the second contains the low 64 bits.
func (d Decimal128) GetBytes() (uint64, uint64) {
	return d.h, d.l
}

// Equal reports whether d and d2 have identical bits. Two NaNs with the same payload are equal
// and 1.0 is not equal to 1.00.
func (d Decimal128) Equal(d2 Decimal128) bool {
	return d.h == d2.h && d.l == d2.l
}

// IsNaN returns whether d is NaN.
func (d Decimal128) IsNaN() bool {
	return d.h>>58&(1<<5-1) == 0x1F
}

// IsInf returns +1 for Infinity, -1 for -Infinity and 0 otherwise.
func (d Decimal128) IsInf() int {
	if d.h>>58&(1<<5-1) != 0x1E {
		return 0
	}
	if d.negative() {
		return -1
	}
	return 1
}

func (d Decimal128) negative() bool { return d.h>>63&1 == 1 }

// parts splits a finite value into its significand and unbiased exponent. Non-canonical
// significands decode as zero.
func (d Decimal128) parts() (*big.Int, int) {
	var exp int
	coef := new(big.Int)
	if d.h>>61&3 == 3 {
		// 1*sign 2*ignored 14*exponent 111*significand with an implicit 0b100 prefix. Every
		// such significand exceeds 10^34 - 1, so the value is zero.
		exp = int(d.h>>47&exponentMask) - exponentBias
		return coef, exp
	}

	exp = int(d.h>>49&exponentMask) - exponentBias
	coef.SetUint64(d.h & (1<<49 - 1))
	coef.Lsh(coef, 64)
	coef.Or(coef, new(big.Int).SetUint64(d.l))
	if coef.Cmp(maxCoefficient) > 0 {
		coef.SetInt64(0)
	}
	return coef, exp
}

// BigInt returns the significand as a big.Int and the exponent, so that d == bi * 10^exp.
func (d Decimal128) BigInt() (*big.Int, int, error) {
	if d.IsNaN() {
		return nil, 0, fmt.Errorf("cannot parse NaN as a *big.Int")
	}
	if inf := d.IsInf(); inf != 0 {
		if inf < 0 {
			return nil, 0, fmt.Errorf("cannot parse -Infinity as a *big.Int")
		}
		return nil, 0, fmt.Errorf("cannot parse Infinity as a *big.Int")
	}

	coef, exp := d.parts()
	if d.negative() {
		coef.Neg(coef)
	}
	return coef, exp, nil
}

// String returns the scientific string form of d as described by the decimal arithmetic
// specification: plain notation when the exponent is not positive and the adjusted exponent is
// at least -6, exponential notation otherwise.
func (d Decimal128) String() string {
	if d.IsNaN() {
		return "NaN"
	}
	switch d.IsInf() {
	case 1:
		return "Infinity"
	case -1:
		return "-Infinity"
	}

	coef, exp := d.parts()
	digits := coef.String()
	adjusted := exp + len(digits) - 1

	var sb strings.Builder
	if d.negative() {
		sb.WriteByte('-')
	}

	switch {
	case exp == 0:
		sb.WriteString(digits)
	case exp < 0 && adjusted >= -6:
		scale := -exp
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		point := len(digits) - scale
		sb.WriteString(digits[:point])
		sb.WriteByte('.')
		sb.WriteString(digits[point:])
	default:
		sb.WriteByte(digits[0])
		if len(digits) > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		sb.WriteByte('E')
		if adjusted >= 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(strconv.Itoa(adjusted))
	}
	return sb.String()
}

var (
	dNaN    = Decimal128{h: 0x1F << 58}
	dPosInf = Decimal128{h: 0x1E << 58}
	dNegInf = Decimal128{h: 0x3E << 58}
)

var decimalPattern = regexp.MustCompile(`^([-+]?)(\d*)(?:\.(\d*))?(?:[Ee]([-+]?\d+))?$`)

// ParseDecimal128 parses s into a Decimal128. The conversion must be exact: strings that would
// need rounding to fit 34 significant digits are rejected.
func ParseDecimal128(s string) (Decimal128, error) {
	switch strings.ToLower(strings.TrimPrefix(s, "+")) {
	case "nan":
		return dNaN, nil
	case "inf", "infinity":
		return dPosInf, nil
	case "-inf", "-infinity":
		return dNegInf, nil
	}

	m := decimalPattern.FindStringSubmatch(s)
	if m == nil || m[2]+m[3] == "" {
		return dNaN, fmt.Errorf("%w: %q", ErrParse, s)
	}

	exp := 0
	if m[4] != "" {
		e, err := strconv.Atoi(m[4])
		if err != nil {
			return dNaN, fmt.Errorf("%w: %q", ErrParse, s)
		}
		exp = e
	}
	exp -= len(m[3])

	digits := strings.TrimLeft(m[2]+m[3], "0")
	if digits == "" {
		digits = "0"
	}
	// More digits than any representable value could need, even after stripping trailing zeros.
	if len(strings.TrimRight(digits, "0")) > maxDigits {
		return dNaN, fmt.Errorf("%w: %q", ErrParse, s)
	}

	coef, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return dNaN, fmt.Errorf("%w: %q", ErrParse, s)
	}
	if m[1] == "-" {
		coef.Neg(coef)
	}

	d, ok := ParseDecimal128FromBigInt(coef, exp)
	if !ok {
		return dNaN, fmt.Errorf("%w: %q", ErrParse, s)
	}
	if m[1] == "-" && coef.Sign() == 0 {
		d.h |= 1 << 63
	}
	return d, nil
}

// ParseDecimal128FromBigInt builds the Decimal128 equal to bi * 10^exp. It returns false if the
// value cannot be represented without rounding.
func ParseDecimal128FromBigInt(bi *big.Int, exp int) (Decimal128, bool) {
	coef := new(big.Int)
	if bi != nil {
		coef.Abs(bi)
	}
	negative := bi != nil && bi.Sign() < 0

	ten := big.NewInt(10)
	rem := new(big.Int)
	// Drop exact trailing zeros until the significand fits or the exponent is too large.
	for coef.Cmp(maxCoefficient) > 0 || exp < MinDecimal128Exp {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 || exp >= MaxDecimal128Exp && coef.Cmp(maxCoefficient) > 0 {
			return Decimal128{}, false
		}
		coef = q
		exp++
	}
	// Clamp large exponents by growing the significand.
	for exp > MaxDecimal128Exp {
		coef.Mul(coef, ten)
		if coef.Cmp(maxCoefficient) > 0 {
			return Decimal128{}, false
		}
		exp--
	}

	var words [2]uint64
	b := coef.Bytes()
	for i, v := range b {
		pos := len(b) - 1 - i
		words[pos/8] |= uint64(v) << (8 * uint(pos%8))
	}

	d := Decimal128{l: words[0], h: words[1]}
	d.h |= uint64(exp+exponentBias) & exponentMask << 49
	if negative {
		d.h |= 1 << 63
	}
	return d, true
}

// MarshalJSON returns Decimal128 as a string.
func (d Decimal128) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a JSON string or an extended JSON object {"$numberDecimal": "..."}.
// A JSON null leaves d unchanged.
func (d *Decimal128) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var ext struct {
			Value *string `json:"$numberDecimal"`
		}
		if err := json.Unmarshal(b, &ext); err != nil {
			return err
		}
		if ext.Value == nil {
			return errors.New("not an extended JSON Decimal128")
		}
		s = *ext.Value
	}

	parsed, err := ParseDecimal128(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
