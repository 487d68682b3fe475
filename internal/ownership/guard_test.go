package ownership

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/domain"
	"github.com/spec-kit/resume-service/internal/observability"
)

func ownersLookup(owners map[string]string, calls *int) OwnerLookup {
	return func(_ context.Context, id string) (string, bool, error) {
		*calls++
		owner, ok := owners[id]
		return owner, ok, nil
	}
}

func TestAuthorize(t *testing.T) {
	owners := map[string]string{"r-1": "42", "r-2": "7"}
	p42 := &auth.Principal{Subject: "42", Role: domain.RoleUser}
	admin := &auth.Principal{Subject: "7", Role: domain.RoleAdmin}

	tests := []struct {
		name       string
		resourceID string
		principal  *auth.Principal
		want       Decision
		wantCalls  int
	}{
		{name: "owner matches", resourceID: "r-1", principal: p42, want: Allow, wantCalls: 1},
		{name: "owned by someone else", resourceID: "r-2", principal: p42, want: Forbidden, wantCalls: 1},
		{name: "unknown resource", resourceID: "r-9", principal: p42, want: NotFound, wantCalls: 1},
		{name: "unknown resource other principal", resourceID: "r-9", principal: admin, want: NotFound, wantCalls: 1},
		{name: "admin role grants nothing extra", resourceID: "r-1", principal: admin, want: Forbidden, wantCalls: 1},
		{name: "no principal", resourceID: "r-1", principal: nil, want: Forbidden, wantCalls: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := NewGuard(nil).Authorize(context.Background(), tt.resourceID, tt.principal, ownersLookup(owners, &calls))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestAuthorizeIsNotCached(t *testing.T) {
	owners := map[string]string{"r-1": "42"}
	calls := 0
	guard := NewGuard(nil)
	p := &auth.Principal{Subject: "42", Role: domain.RoleUser}

	got, err := guard.Authorize(context.Background(), "r-1", p, ownersLookup(owners, &calls))
	require.NoError(t, err)
	assert.Equal(t, Allow, got)

	owners["r-1"] = "7"
	got, err = guard.Authorize(context.Background(), "r-1", p, ownersLookup(owners, &calls))
	require.NoError(t, err)
	assert.Equal(t, Forbidden, got)
	assert.Equal(t, 2, calls)
}

func TestAuthorizeLookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := func(context.Context, string) (string, bool, error) { return "", false, boom }

	_, err := NewGuard(nil).Authorize(context.Background(), "r-1", &auth.Principal{Subject: "42"}, lookup)
	require.ErrorIs(t, err, boom)
}

func TestEnforce(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	guard := NewGuard(metrics)
	calls := 0
	lookup := ownersLookup(map[string]string{"r-1": "42"}, &calls)
	p := &auth.Principal{Subject: "42", Role: domain.RoleUser}

	require.NoError(t, guard.Enforce(context.Background(), "r-1", p, lookup))
	require.ErrorIs(t, guard.Enforce(context.Background(), "r-2", p, lookup), ErrOwnerNotFound)
	require.ErrorIs(t, guard.Enforce(context.Background(), "r-1", &auth.Principal{Subject: "7"}, lookup), ErrOwnerMismatch)

	decisions := metrics.OwnershipDecisions()
	assert.Equal(t, 1.0, testutil.ToFloat64(decisions.WithLabelValues("allow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(decisions.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(decisions.WithLabelValues("forbidden")))
}
