// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/insolar/crowdfund/internal/failure"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		var coded *failure.Error
		if !errors.As(err, &coded) {
			// cobra usage errors
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		code := failure.CodeOf(err)
		fmt.Fprintf(os.Stderr, "error [%s]: %s\n", code, failure.MessageOf(err))
		os.Exit(exitCode(code))
	}
}

func exitCode(code failure.Code) int {
	if code.Blocking() {
		return 3
	}
	if code == failure.CodeUserRejected {
		return 2
	}
	return 1
}
