package errors_test

import (
	nerrors "errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/guyt101z/vumi-smpp-client/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const level = 10

var (
	err0 = errors.New("0")
	err1 = errors.New("1")
	err2 = errors.New("2")
	nat  = nerrors.New("native error")
)

func TestError(t *testing.T) {
	cases := []struct {
		desc  string
		err   error
		msg   string
		bytes []byte
	}{
		{desc: "level 0 wrapped error", err: err0, msg: "0", bytes: []byte(`{"error":"","message":"0"}`)},
		{desc: "level 1 wrapped error", err: wrap(1), msg: message(1), bytes: []byte(`{"error":"0","message":"1"}`)},
		{desc: "level 2 wrapped error", err: wrap(2), msg: message(2), bytes: []byte(`{"error":"1","message":"2"}`)},
		{
			desc:  fmt.Sprintf("level %d wrapped error", level),
			err:   wrap(level),
			msg:   message(level),
			bytes: []byte(`{"error":"` + strconv.Itoa(level-1) + `","message":"` + strconv.Itoa(level) + `"}`),
		},
		{desc: "nil error", err: errors.New(""), msg: "", bytes: []byte(`{"error":"","message":""}`)},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			assert.Equal(t, c.msg, c.err.Error())
			ce := c.err.(errors.Error)
			data, err := ce.MarshalJSON()
			assert.NoError(t, err)
			assert.Equal(t, c.bytes, data)
		})
	}
}

func TestContains(t *testing.T) {
	cases := []struct {
		desc      string
		container error
		contained error
		contains  bool
	}{
		{desc: "nil contains nil", container: nil, contained: nil, contains: true},
		{desc: "nil contains non-nil", container: nil, contained: err0, contains: false},
		{desc: "non-nil contains nil", container: err0, contained: nil, contains: false},
		{desc: "non-nil contains non-nil", container: err0, contained: err1, contains: false},
		{desc: "wrap(1,0) contains 0", container: errors.Wrap(err1, err0), contained: err0, contains: true},
		{desc: "wrap(1,0) contains 1", container: errors.Wrap(err1, err0), contained: err1, contains: true},
		{desc: "wrap(2,wrap(1,0)) contains 1", container: errors.Wrap(err2, errors.Wrap(err1, err0)), contained: err1, contains: true},
		{desc: "deep wrap contains a mid leaf", container: wrap(level), contained: errors.New(strconv.Itoa(level / 2)), contains: true},
		{desc: "deep wrap does not contain a sub-chain", container: wrap(level), contained: wrap(level / 2), contains: false},
		{desc: "native error contains error", container: nat, contained: err0, contains: false},
		{desc: "wrap(1,nat) contains 1", container: errors.Wrap(err1, nat), contained: err1, contains: true},
		{desc: "error contains native error", container: err0, contained: nat, contains: false},
		{desc: "wrap(nat,0) contains 0", container: errors.Wrap(nat, err0), contained: err0, contains: true},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			assert.Equal(t, c.contains, errors.Contains(c.container, c.contained))
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cases := []struct {
		desc    string
		wrapper error
		wrapped error
	}{
		{desc: "err1 wraps err0", wrapper: err1, wrapped: err0},
		{desc: "err2 wraps wrap(err1,err0)", wrapper: err2, wrapped: errors.Wrap(err1, err0)},
		{desc: "nat wraps err0", wrapper: nat, wrapped: err0},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			wrapped := errors.Wrap(c.wrapper, c.wrapped)
			gotWrapper, gotWrapped := errors.Unwrap(wrapped)
			assert.Equal(t, c.wrapper, gotWrapper)
			assert.Equal(t, c.wrapped, gotWrapped)
		})
	}
}

func TestUnwrapNilCases(t *testing.T) {
	wrapper, wrapped := errors.Unwrap(errors.Wrap(nil, nil))
	assert.Nil(t, wrapper)
	assert.Nil(t, wrapped)

	wrapper, wrapped = errors.Unwrap(errors.Wrap(err0, nil))
	assert.Nil(t, wrapper)
	assert.Equal(t, err0, wrapped)

	wrapper, wrapped = errors.Unwrap(errors.Wrap(nil, err0))
	assert.Nil(t, wrapper)
	assert.Nil(t, wrapped)
}

func wrap(level int) error {
	if level == 0 {
		return errors.New(strconv.Itoa(level))
	}
	return errors.Wrap(errors.New(strconv.Itoa(level)), wrap(level-1))
}

func message(level int) string {
	if level == 0 {
		return "0"
	}
	return strconv.Itoa(level) + " : " + message(level-1)
}
