package errors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidQuery         = errors.New("invalid query")
	ErrInvalidRange         = errors.New("invalid date range")
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrTimeout              = errors.New("timeout")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidQuery) || errors.Is(err, ErrInvalidRange)
}

// IsRetryable reports whether the caller may safely retry the call. All engine
// operations are pure reads, so a retry never duplicates work.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrTimeout)
}
