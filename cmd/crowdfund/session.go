// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type sessionState struct {
	Connected bool   `json:"connected"`
	Account   string `json:"account,omitempty"`
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the wallet session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.renderSession(cmd)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "connect",
		Short: "Ask the wallet for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.manager.Session().Connect(cmd.Context()); err != nil {
				return err
			}
			return a.renderSession(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disconnect",
		Short: "Revoke the wallet grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.manager.Session().Disconnect(cmd.Context()); err != nil {
				return err
			}
			return a.renderSession(cmd)
		},
	})
	return cmd
}

func (a *app) renderSession(cmd *cobra.Command) error {
	var state sessionState
	if account, ok := a.manager.Session().Account(); ok {
		state = sessionState{Connected: true, Account: account.Hex()}
	}
	return a.render(cmd.OutOrStdout(), state, func(w io.Writer) {
		if !state.Connected {
			fmt.Fprintln(w, "Not connected")
			return
		}
		fmt.Fprintf(w, "Connected:\t%s\n", state.Account)
	})
}
