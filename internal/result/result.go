// Package result provides the success/failure container used across the
// auth core instead of error returns for expected domain failures. A Result
// holds exactly one of a value or a *domain.Error; reading the wrong branch
// is a programming error and panics.
package result

import (
	"fmt"

	"github.com/taskhive/taskhive/internal/domain"
)

// Result holds either a value of type T or a domain error, never both.
type Result[T any] struct {
	value T
	err   *domain.Error
	ok    bool
}

// Ok wraps a successful value. It never fails.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Err wraps a domain error. A nil error is a caller bug and panics
// immediately rather than producing a Result that is neither branch.
func Err[T any](err *domain.Error) Result[T] {
	if err == nil {
		panic("result: Err called with nil error")
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool {
	return r.ok
}

// Value returns the success value. Panics on a failure Result.
func (r Result[T]) Value() T {
	if !r.ok {
		panic(fmt.Sprintf("result: Value called on failure (%s)", r.err.Code))
	}
	return r.value
}

// Error returns the domain error. Panics on a success Result.
func (r Result[T]) Error() *domain.Error {
	if r.ok {
		panic("result: Error called on success")
	}
	return r.err
}

// Match folds the Result without exposing either branch to misuse.
func (r Result[T]) Match(onOK func(T), onErr func(*domain.Error)) {
	if r.ok {
		onOK(r.value)
		return
	}
	onErr(r.err)
}

// Map transforms the success value, leaving a failure untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.ok {
		return Err[U](r.err)
	}
	return Ok(f(r.value))
}

// MapErr transforms the error, leaving a success untouched.
func MapErr[T any](r Result[T], f func(*domain.Error) *domain.Error) Result[T] {
	if r.ok {
		return r
	}
	return Err[T](f(r.err))
}

// Bind chains a dependent operation, short-circuiting on failure.
func Bind[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if !r.ok {
		return Err[U](r.err)
	}
	return f(r.value)
}
