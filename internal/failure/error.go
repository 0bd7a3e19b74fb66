// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package failure

import (
	stderrors "errors"
	"fmt"
)

// Error carries a taxonomy code together with a user-facing message and the cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

// Cause is recognised by github.com/pkg/errors.
func (e *Error) Cause() error {
	return e.Err
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func Newf(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to err. A nil err yields nil. An err that already carries a code
// keeps it.
func Wrap(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}
	if existing := find(err); existing != nil {
		return err
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func Wrapf(code Code, err error, format string, args ...interface{}) error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// Force attaches a code to err even when err already carries another one.
func Force(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code in the chain, or CodeNetworkOrLedger for errors that
// never passed a bridge boundary.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if e := find(err); e != nil {
		return e.Code
	}
	return CodeNetworkOrLedger
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns the message safe to show to the user.
func MessageOf(err error) string {
	if e := find(err); e != nil {
		return e.Message
	}
	return "ledger request failed"
}

func find(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}
