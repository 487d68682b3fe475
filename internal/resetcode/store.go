// Package resetcode implements the one-time verification code flow used to
// recover access without a valid credential.
package resetcode

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps every infrastructure failure of the code store.
var ErrStoreUnavailable = errors.New("resetcode: store unavailable")

// CheckResult is the outcome of matching a submitted code against the stored one.
type CheckResult int

const (
	CodeValid CheckResult = iota + 1
	// CodeExpired covers both "never requested" and "TTL elapsed".
	CodeExpired
	CodeMismatch
)

func (r CheckResult) String() string {
	switch r {
	case CodeValid:
		return "valid"
	case CodeExpired:
		return "expired"
	case CodeMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Store holds at most one pending code per recovery target.
type Store interface {
	// Put stores code for target, replacing any previous code and resetting the TTL.
	Put(ctx context.Context, target, code string, ttl time.Duration) error
	// Get returns the pending code. found is false when none exists or it expired.
	Get(ctx context.Context, target string) (code string, found bool, err error)
	// ConsumeIfMatch deletes the pending code only when it equals code, atomically.
	// remaining is the lifetime the code had left when it was claimed.
	ConsumeIfMatch(ctx context.Context, target, code string) (result CheckResult, remaining time.Duration, err error)
	// Restore puts a claimed code back for remaining, unless a newer code was issued since.
	Restore(ctx context.Context, target, code string, remaining time.Duration) error
}
