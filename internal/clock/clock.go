// Package clock abstracts time.Now so services that enforce time windows
// can be tested against a fixed instant.
package clock

import "time"

// Clock returns the current time.  Production code uses Real; tests use
// NewFixed to pin the sales-window checks to a known moment.
type Clock interface {
	Now() time.Time
}

// Real reads the wall clock in UTC.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed struct{ t time.Time }

// NewFixed builds a Fixed clock pinned to t.
func NewFixed(t time.Time) Fixed { return Fixed{t: t} }

func (f Fixed) Now() time.Time { return f.t }
