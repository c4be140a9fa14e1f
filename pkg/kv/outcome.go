package kv

// Outcome is the result of a single store call: either a value or a *ReadError,
// never both.
type Outcome[T any] struct {
	value T
	err   *ReadError
}

// Ok wraps a successful value.
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// Fail wraps a failure. A nil err is replaced by a db-error so that
// a Fail outcome always carries a reason.
func Fail[T any](err *ReadError) Outcome[T] {
	if err == nil {
		err = DBError(nil)
	}
	return Outcome[T]{err: err}
}

// From converts a Go (value, error) pair into an Outcome.
// A non-nil error wins and value is discarded.
func From[T any](value T, err error) Outcome[T] {
	if err != nil {
		return Fail[T](AsReadError(err))
	}
	return Ok(value)
}

// Get returns the value and the error; exactly one is meaningful.
func (o Outcome[T]) Get() (T, *ReadError) {
	return o.value, o.err
}

// IsOk reports whether the outcome is a success.
func (o Outcome[T]) IsOk() bool {
	return o.err == nil
}

// Value returns the success value, or the zero value of T on failure.
func (o Outcome[T]) Value() T {
	return o.value
}

// Err returns the failure, or nil on success.
func (o Outcome[T]) Err() *ReadError {
	return o.err
}
