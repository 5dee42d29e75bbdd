package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrNotFound
	ErrInvalid
	ErrInvalidRange
	ErrEmbeddingUnavailable
	ErrStoreUnavailable
	ErrTimeout
	ErrInternal
)
