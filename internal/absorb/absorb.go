// Package absorb carries a stage's value together with the failure that was
// swallowed while producing it, so fallback decisions stay visible to the
// caller instead of travelling as errors.
package absorb

// Result is a stage outcome. Reason is non-nil when the stage failed and the
// failure was absorbed; Value is then the zero value.
type Result[T any] struct {
	Value  T
	Reason error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail records an absorbed failure.
func Fail[T any](reason error) Result[T] {
	return Result[T]{Reason: reason}
}

// Absorbed reports whether the stage failed.
func (r Result[T]) Absorbed() bool {
	return r.Reason != nil
}

// Or returns the value, or fallback when the stage failed.
func (r Result[T]) Or(fallback T) T {
	if r.Absorbed() {
		return fallback
	}
	return r.Value
}
