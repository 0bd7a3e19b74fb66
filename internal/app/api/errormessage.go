// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package api

import (
	"github.com/insolar/crowdfund/internal/failure"
)

type ErrorMessage struct {
	Code  string   `json:"code"`
	Error []string `json:"error"`
	// Blocking asks the client to stop until a wallet is installed or unlocked.
	Blocking bool `json:"blocking,omitempty"`
}

func NewSingleMessageError(err string) ErrorMessage {
	return ErrorMessage{Code: string(failure.CodeInvalidInput), Error: []string{err}}
}

// NewErrorMessage renders only the code and the user-facing message of err.
func NewErrorMessage(err error) ErrorMessage {
	code := failure.CodeOf(err)
	return ErrorMessage{
		Code:     string(code),
		Error:    []string{failure.MessageOf(err)},
		Blocking: code.Blocking(),
	}
}
