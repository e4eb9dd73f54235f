package result

import (
	"fmt"

	"github.com/taskhive/taskhive/internal/domain"
)

// Union2 generalizes Result to two mutually exclusive success shapes plus
// one error channel. Used where an operation has more than one legitimate
// outcome, e.g. OAuth login producing either a new or an existing user.
type Union2[A, B any] struct {
	first  A
	second B
	err    *domain.Error
	branch int // 1, 2, or 0 for error
}

func First[A, B any](value A) Union2[A, B] {
	return Union2[A, B]{first: value, branch: 1}
}

func Second[A, B any](value B) Union2[A, B] {
	return Union2[A, B]{second: value, branch: 2}
}

func UnionErr[A, B any](err *domain.Error) Union2[A, B] {
	if err == nil {
		panic("result: UnionErr called with nil error")
	}
	return Union2[A, B]{}.withErr(err)
}

func (u Union2[A, B]) withErr(err *domain.Error) Union2[A, B] {
	u.err = err
	u.branch = 0
	return u
}

func (u Union2[A, B]) IsOk() bool {
	return u.branch != 0
}

// IsFirst reports whether the union holds the first success shape.
func (u Union2[A, B]) IsFirst() bool {
	return u.branch == 1
}

// FirstValue returns the first success shape. Panics unless IsFirst.
func (u Union2[A, B]) FirstValue() A {
	if u.branch != 1 {
		panic(fmt.Sprintf("result: FirstValue called on branch %d", u.branch))
	}
	return u.first
}

// SecondValue returns the second success shape. Panics unless the union
// holds it.
func (u Union2[A, B]) SecondValue() B {
	if u.branch != 2 {
		panic(fmt.Sprintf("result: SecondValue called on branch %d", u.branch))
	}
	return u.second
}

// Error returns the domain error. Panics on either success branch.
func (u Union2[A, B]) Error() *domain.Error {
	if u.branch != 0 {
		panic("result: Error called on success")
	}
	return u.err
}

// Match folds the union over its three branches.
func (u Union2[A, B]) Match(onFirst func(A), onSecond func(B), onErr func(*domain.Error)) {
	switch u.branch {
	case 1:
		onFirst(u.first)
	case 2:
		onSecond(u.second)
	default:
		onErr(u.err)
	}
}
