// Package pipeline runs registered validators ahead of a command handler
// and short-circuits to a typed failure before the handler executes.
//
// Validators for a command run concurrently; every failure is collected, so
// one failing validator never hides another. The failure value is built
// through the type parameter in the handler's exact result shape, never by
// inspecting the response type at runtime.
package pipeline

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/result"
)

// Validator checks one aspect of a command. A nil return means the aspect
// is fine; a non-nil *domain.Error contributes to the joined failure.
type Validator[C any] func(ctx context.Context, cmd C) *domain.Error

// Handler is a command handler producing a typed Result.
type Handler[C, T any] func(ctx context.Context, cmd C) result.Result[T]

// Registry holds validators keyed by command type. Register everything at
// startup; Dispatch may run from any goroutine afterwards.
type Registry struct {
	mu         sync.RWMutex
	validators map[reflect.Type][]any
}

func NewRegistry() *Registry {
	return &Registry{validators: make(map[reflect.Type][]any)}
}

// Register adds a validator for command type C.
func Register[C any](r *Registry, v Validator[C]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reflect.TypeOf((*C)(nil)).Elem()
	r.validators[key] = append(r.validators[key], v)
}

func validatorsFor[C any](r *Registry) []Validator[C] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := reflect.TypeOf((*C)(nil)).Elem()
	raw := r.validators[key]
	out := make([]Validator[C], 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(Validator[C]))
	}
	return out
}

// Dispatch runs cmd through its registered validators, then through the
// handler. With no validators the command passes through unchanged and the
// handler's result is returned verbatim. With failures, the messages are
// joined with "; " (order unspecified beyond determinism) into a single
// Validation failure and the handler is never invoked.
func Dispatch[C, T any](ctx context.Context, r *Registry, cmd C, handler Handler[C, T]) result.Result[T] {
	if err := ctx.Err(); err != nil {
		return result.Err[T](domain.ErrCanceled)
	}

	vs := validatorsFor[C](r)
	if len(vs) == 0 {
		return handler(ctx, cmd)
	}

	failures := make([]*domain.Error, len(vs))
	var wg sync.WaitGroup
	for i, v := range vs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			failures[i] = v(ctx, cmd)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result.Err[T](domain.ErrCanceled)
	}

	messages := make([]string, 0, len(failures))
	for _, f := range failures {
		if f != nil {
			messages = append(messages, f.Message)
		}
	}
	if len(messages) > 0 {
		// Sorted join keeps the output deterministic; callers may only
		// rely on substring containment.
		sort.Strings(messages)
		return result.Err[T](domain.NewValidationError("VALIDATION_FAILED", strings.Join(messages, "; ")))
	}

	return handler(ctx, cmd)
}
