package kv

import (
	"errors"
	"fmt"
)

// Reason identifies why a store operation failed.
type Reason string

const (
	ReasonNotFound    Reason = "not-found"
	ReasonInvalidData Reason = "invalid-data"
	ReasonDBError     Reason = "db-error"
)

// ReadError is the failure side of every store operation.
// It serializes as {"reason": ..., "key": ..., "detail": ...}.
type ReadError struct {
	Reason Reason `json:"reason"`
	Key    string `json:"key,omitempty"`
	Detail string `json:"detail,omitempty"`

	err error
}

// NotFound reports that key is absent.
func NotFound(key string) *ReadError {
	return &ReadError{Reason: ReasonNotFound, Key: key}
}

// InvalidData reports that stored or submitted bytes could not be decoded.
func InvalidData(err error) *ReadError {
	re := &ReadError{Reason: ReasonInvalidData, err: err}
	if err != nil {
		re.Detail = err.Error()
	}
	return re
}

// DBError reports a failure of the underlying storage.
func DBError(err error) *ReadError {
	re := &ReadError{Reason: ReasonDBError, err: err}
	if err != nil {
		re.Detail = err.Error()
	}
	return re
}

// WithKey returns a copy of e annotated with key.
func (e *ReadError) WithKey(key string) *ReadError {
	c := *e
	c.Key = key
	return &c
}

func (e *ReadError) Error() string {
	msg := string(e.Reason)
	if e.Key != "" {
		msg = fmt.Sprintf("%s: key %q", msg, e.Key)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ReadError) Unwrap() error { return e.err }

// Is matches any *ReadError with the same reason, so that
// errors.Is(err, kv.NotFound("")) works regardless of key or detail.
func (e *ReadError) Is(target error) bool {
	t, ok := target.(*ReadError)
	return ok && t.Reason == e.Reason
}

// AsReadError recovers the *ReadError in err's chain.
// Errors without one are classified as db-error. Returns nil for a nil error.
func AsReadError(err error) *ReadError {
	if err == nil {
		return nil
	}
	var re *ReadError
	if errors.As(err, &re) {
		return re
	}
	return DBError(err)
}

// AsInvalidData is like AsReadError, but always yields an invalid-data error.
// Used for codec failures, which can never mean anything else.
func AsInvalidData(err error) *ReadError {
	if err == nil {
		return nil
	}
	var re *ReadError
	if errors.As(err, &re) && re.Reason == ReasonInvalidData {
		return re
	}
	return InvalidData(err)
}

// IsNotFound reports whether err carries a not-found reason.
func IsNotFound(err error) bool {
	var re *ReadError
	return errors.As(err, &re) && re.Reason == ReasonNotFound
}
