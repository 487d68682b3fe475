// Package ownership decides whether a principal may act on a resource it claims to own.
package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/observability"
)

// Decision is the outcome of an ownership check.
type Decision int

const (
	Allow Decision = iota + 1
	NotFound
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

var (
	ErrOwnerNotFound = errors.New("ownership: resource not found")
	ErrOwnerMismatch = errors.New("ownership: principal does not own resource")
)

// OwnerLookup fetches the owner of a resource. found is false when no such resource exists.
type OwnerLookup func(ctx context.Context, resourceID string) (ownerID string, found bool, err error)

// Guard evaluates ownership. Facts are looked up on every call and never cached.
type Guard struct {
	metrics *observability.Metrics
}

// NewGuard returns a guard that records decisions in metrics (which may be nil).
func NewGuard(metrics *observability.Metrics) *Guard {
	return &Guard{metrics: metrics}
}

// Authorize checks that principal owns resourceID. Lookup failures are returned as
// errors and produce no decision.
func (g *Guard) Authorize(ctx context.Context, resourceID string, principal *auth.Principal, lookup OwnerLookup) (Decision, error) {
	if principal == nil || principal.Subject == "" {
		return g.record(Forbidden), nil
	}
	if lookup == nil {
		return 0, errors.New("ownership: owner lookup is required")
	}

	ownerID, found, err := lookup(ctx, resourceID)
	if err != nil {
		return 0, fmt.Errorf("ownership: lookup %s: %w", resourceID, err)
	}
	if !found {
		return g.record(NotFound), nil
	}
	if ownerID != principal.Subject {
		return g.record(Forbidden), nil
	}
	return g.record(Allow), nil
}

// Enforce is Authorize with non-Allow decisions turned into errors.
func (g *Guard) Enforce(ctx context.Context, resourceID string, principal *auth.Principal, lookup OwnerLookup) error {
	decision, err := g.Authorize(ctx, resourceID, principal, lookup)
	if err != nil {
		return err
	}
	switch decision {
	case Allow:
		return nil
	case NotFound:
		return ErrOwnerNotFound
	default:
		return ErrOwnerMismatch
	}
}

func (g *Guard) record(d Decision) Decision {
	g.metrics.RecordOwnership(d.String())
	return d
}
