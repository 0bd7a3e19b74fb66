// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package normalize

import (
	"math/big"
	"time"

	"github.com/insolar/crowdfund/internal/failure"
)

const (
	// DefaultDateLayout mirrors the en-US short date the dApp pages render.
	DefaultDateLayout = "1/2/2006"
	NotAvailable      = "N/A"

	inputDateLayout = "2006-01-02"
)

// FormatDeadline renders Unix seconds as a calendar date in loc. Unset, non-positive and
// out-of-range deadlines render as NotAvailable.
func FormatDeadline(unix *big.Int, layout string, loc *time.Location) string {
	if unix == nil || unix.Sign() <= 0 || !unix.IsInt64() {
		return NotAvailable
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(unix.Int64(), 0).In(loc).Format(layout)
}

// DeadlineSeconds converts a deadline to the ledger's Unix seconds.
func DeadlineSeconds(t time.Time) *big.Int {
	return big.NewInt(t.Unix())
}

// ParseDeadline accepts a calendar date (midnight UTC) or an RFC 3339 timestamp.
func ParseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(inputDateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, failure.Newf(failure.CodeInvalidInput, "deadline %q is not a date", s)
}
