package repository

import "errors"

// Result is the uniform outcome of a data-access call: a success flag,
// the number of affected rows, the returned data and the error detail.
// It is consumed immediately by the calling service and never persisted.
type Result[T any] struct {
	Success  bool
	Affected int64
	Data     T
	Err      error
}

func ok[T any](data T, affected int64) Result[T] {
	return Result[T]{Success: true, Affected: affected, Data: data}
}

func fail[T any](err error) Result[T] {
	return Result[T]{Err: classify(err)}
}

// Failure returns the error of a failed result, or nil on success.
func (r Result[T]) Failure() error {
	if r.Success {
		return nil
	}
	if r.Err == nil {
		return errors.New("query failed")
	}
	return r.Err
}

// Duplicate reports whether the call failed on a unique constraint.
func (r Result[T]) Duplicate() bool {
	return !r.Success && errors.Is(r.Err, ErrDuplicate)
}
