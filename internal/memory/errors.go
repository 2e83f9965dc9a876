package memory

import "fmt"

// Kind classifies an Error so callers can branch with errors.As without
// parsing message text.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindTypeMismatch
	KindStore
	KindEmbedding
	KindConcurrency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindStore:
		return "store"
	case KindEmbedding:
		return "embedding"
	case KindConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// Error is the engine's typed error. Input validation and not-found
// errors are never audited (spec: surfaced to caller, not logged as a
// mutation); store/embedding/concurrency errors abort the enclosing
// request.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func validationErr(format string, args ...any) *Error {
	return newErr(KindValidation, fmt.Sprintf(format, args...), nil)
}

func notFoundErr(format string, args ...any) *Error {
	return newErr(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func typeMismatchErr(format string, args ...any) *Error {
	return newErr(KindTypeMismatch, fmt.Sprintf(format, args...), nil)
}

func storeErr(msg string, err error) *Error {
	return newErr(KindStore, msg, err)
}

func embeddingErr(msg string, err error) *Error {
	return newErr(KindEmbedding, msg, err)
}
