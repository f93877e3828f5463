package integration

import "errors"

// Local processing errors. Each maps to a terminal state of the unit of
// work: authentication failures reject the unit, everything else fails it.
var (
	// ErrAuthentication means the payload signature did not verify.
	ErrAuthentication = errors.New("integration: signature verification failed")

	// ErrConfiguration means the integration is not set up to process
	// the request, e.g. no webhook secret configured.
	ErrConfiguration = errors.New("integration: integration not configured")

	// ErrIdentityConflict means an incoming external identifier is
	// already bound to a different local entity, or would rebind an
	// already-bound entity. The unit is failed without partial writes.
	ErrIdentityConflict = errors.New("integration: identity conflict")

	// ErrValidation means the payload was authenticated but its content
	// is malformed or violates an invariant.
	ErrValidation = errors.New("integration: payload validation failed")

	// ErrPersistence wraps storage failures surfaced mid-unit.
	ErrPersistence = errors.New("integration: persistence failure")
)

// Remote platform errors, classified from transport responses.
var (
	ErrRemoteNotFound     = errors.New("integration: remote resource not found")
	ErrValidationRejected = errors.New("integration: remote rejected the payload")
	ErrRateLimited        = errors.New("integration: remote rate limit exceeded")
	ErrUnauthorized       = errors.New("integration: remote authorization failed")
	ErrUnavailable        = errors.New("integration: remote temporarily unavailable")
)

// IsRetryable reports whether a remote error is worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}
