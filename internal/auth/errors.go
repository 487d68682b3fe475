package auth

import "errors"

// Token validation failures. All of them mean "unauthenticated" at the boundary,
// but they stay distinct for logs and metrics.
var (
	ErrTokenMalformed        = errors.New("auth: token malformed")
	ErrTokenSignatureInvalid = errors.New("auth: token signature invalid")
	ErrTokenExpired          = errors.New("auth: token expired")
	ErrTokenWrongKind        = errors.New("auth: token kind not accepted here")
)

// TokenErrorReason returns a stable label for a validation error.
func TokenErrorReason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenWrongKind):
		return "wrong_kind"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
