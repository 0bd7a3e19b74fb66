// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package normalize

import (
	"math/big"
	"strings"

	"github.com/insolar/crowdfund/internal/failure"
)

// EtherDecimals is the scale of the ledger's smallest token unit.
const EtherDecimals = 18

var ten = big.NewInt(10)

func scale(decimals int) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(decimals)), nil)
}

// FormatUnits renders v as a decimal string with the given number of fractional digits
// removed from the integer. The result always keeps one fractional digit ("1.0") and
// drops trailing zeros otherwise. A nil v renders as "0.0".
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		v = new(big.Int)
	}
	abs := new(big.Int).Abs(v)
	whole, frac := new(big.Int).QuoRem(abs, scale(decimals), new(big.Int))

	fs := frac.String()
	if pad := decimals - len(fs); pad > 0 {
		fs = strings.Repeat("0", pad) + fs
	}
	fs = strings.TrimRight(fs, "0")
	if fs == "" {
		fs = "0"
	}

	out := whole.String() + "." + fs
	if v.Sign() < 0 {
		out = "-" + out
	}
	return out
}

func FormatEther(v *big.Int) string {
	return FormatUnits(v, EtherDecimals)
}

// ParseUnits is the inverse of FormatUnits for non-negative values. It accepts plain
// decimal notation only: no sign, no exponent, no grouping, at most decimals fractional
// digits (trailing zeros beyond that are tolerated).
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, failure.New(failure.CodeInvalidInput, "amount is empty")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return nil, failure.Newf(failure.CodeInvalidInput, "amount %q is not a decimal number", s)
	}
	if !digits(whole) || !digits(frac) {
		return nil, failure.Newf(failure.CodeInvalidInput, "amount %q is not a decimal number", s)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > decimals {
		return nil, failure.Newf(failure.CodeInvalidInput, "amount %q has more than %d fractional digits", s, decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	combined := strings.TrimLeft(whole+frac, "0")
	if combined == "" {
		return new(big.Int), nil
	}
	out, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, failure.Newf(failure.CodeInvalidInput, "amount %q is not a decimal number", s)
	}
	return out, nil
}

func ParseEther(s string) (*big.Int, error) {
	return ParseUnits(s, EtherDecimals)
}

// ParsePositive parses an ether amount and requires it to be strictly positive and to fit
// the ledger's uint256.
func ParsePositive(s string) (*big.Int, error) {
	v, err := ParseEther(s)
	if err != nil {
		return nil, err
	}
	if v.Sign() <= 0 {
		return nil, failure.Newf(failure.CodeInvalidInput, "amount %q must be greater than zero", strings.TrimSpace(s))
	}
	if v.BitLen() > 256 {
		return nil, failure.Newf(failure.CodeInvalidInput, "amount %q is too large", strings.TrimSpace(s))
	}
	return v, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
