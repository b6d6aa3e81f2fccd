// Package apierr provides the error sentinels shared by API clients.
// Provider-specific errors are classified into these sentinels at the
// adapter boundary with fmt.Errorf("%s: %w", msg, sentinel), and callers
// check them with errors.Is.
//
// None of these errors is retried: a failed request aborts the run.
package apierr

import "errors"

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrServer indicates the service failed with a 5xx status.
	ErrServer = errors.New("server error")
)

// sentinels lists every classified API error.
var sentinels = []error{
	ErrRateLimit,
	ErrQuotaExceeded,
	ErrTimeout,
	ErrAuthFailed,
	ErrBadRequest,
	ErrServer,
}

// IsAPIError reports whether err wraps any apierr sentinel.
func IsAPIError(err error) bool {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
