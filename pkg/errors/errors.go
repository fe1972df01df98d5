// Package errors provides a wrapped-error type that keeps a chain of
// causes while still exposing a single flat message to callers that just
// want text, and a JSON representation for logging pipelines.
package errors

import "encoding/json"

// Error extends the standard error interface with JSON marshaling and
// access to its own (non-chained) message.
type Error interface {
	error
	json.Marshaler
	Msg() string
}

type customError struct {
	msg     string
	wrapper error
	wrapped error
	isLeaf  bool
}

// New returns an Error carrying msg with no further cause.
func New(msg string) Error {
	return &customError{msg: msg, isLeaf: true}
}

// Wrap returns an error combining wrapper's own message with wrapped's
// full chain. If wrapper is nil, Wrap returns nil. If wrapped is nil,
// Wrap returns wrapper unchanged.
func Wrap(wrapper, wrapped error) error {
	if wrapper == nil {
		return nil
	}
	if wrapped == nil {
		return wrapper
	}
	return &customError{msg: selfMsg(wrapper), wrapper: wrapper, wrapped: wrapped}
}

// Unwrap splits err back into the wrapper and wrapped error it was built
// from. A leaf error (created by New, or any error that wasn't built by
// Wrap) reports a nil wrapper and itself as wrapped.
func Unwrap(err error) (error, error) {
	if err == nil {
		return nil, nil
	}
	ce, ok := err.(*customError)
	if !ok || ce.isLeaf {
		return nil, err
	}
	return ce.wrapper, ce.wrapped
}

// Contains reports whether target appears anywhere in err's cause chain,
// compared by rendered message.
func Contains(err, target error) bool {
	if err == nil || target == nil {
		return err == nil && target == nil
	}
	cur := err
	for cur != nil {
		wrapper, wrapped := Unwrap(cur)
		if wrapper == nil {
			return cur.Error() == target.Error()
		}
		if wrapper.Error() == target.Error() {
			return true
		}
		cur = wrapped
	}
	return false
}

func selfMsg(err error) string {
	if ce, ok := err.(*customError); ok {
		return ce.msg
	}
	return err.Error()
}

// Error implements the error interface, rendering the full cause chain
// joined by " : ".
func (c *customError) Error() string {
	if c.wrapped == nil {
		return c.msg
	}
	return c.msg + " : " + c.wrapped.Error()
}

// Msg returns this error's own message without its wrapped chain.
func (c *customError) Msg() string {
	return c.msg
}

// MarshalJSON renders {"error": <immediate cause's own message>, "message": <own message>}.
func (c *customError) MarshalJSON() ([]byte, error) {
	causeMsg := ""
	if c.wrapped != nil {
		causeMsg = selfMsg(c.wrapped)
	}
	return json.Marshal(struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{
		Error:   causeMsg,
		Message: c.msg,
	})
}
