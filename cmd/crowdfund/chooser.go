// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/insolar/crowdfund/internal/wallet"
)

// promptChooser asks on the terminal which keystore account to unlock.
type promptChooser struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

func newPromptChooser(in io.Reader, out io.Writer) *promptChooser {
	c := &promptChooser{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
	}
	return c
}

func (c *promptChooser) Choose(ctx context.Context, candidates []accounts.Account) (accounts.Account, string, error) {
	fmt.Fprintln(c.out, "Select an account:")
	for i, a := range candidates {
		fmt.Fprintf(c.out, "  [%d] %s\n", i+1, a.Address.Hex())
	}
	fmt.Fprint(c.out, "account (empty to cancel): ")
	line, err := c.readLine()
	if err != nil || ctx.Err() != nil {
		return accounts.Account{}, "", wallet.ErrDeclined
	}
	if line == "" || line == "q" {
		return accounts.Account{}, "", wallet.ErrDeclined
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(candidates) {
		return accounts.Account{}, "", errors.Errorf("no account numbered %q", line)
	}

	fmt.Fprint(c.out, "passphrase: ")
	passphrase, err := c.readSecret()
	if err != nil {
		return accounts.Account{}, "", wallet.ErrDeclined
	}
	return candidates[n-1], passphrase, nil
}

func (c *promptChooser) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *promptChooser) readSecret() (string, error) {
	if c.fd < 0 {
		return c.readLine()
	}
	secret, err := term.ReadPassword(c.fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
