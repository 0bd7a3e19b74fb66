// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/insolar/crowdfund/component"
	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/internal/failure"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type app struct {
	output  string
	verbose bool
	account string

	manager *component.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "crowdfund",
		Short:         "Browse, create and fund ledger crowdfunding campaigns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.prepare(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.manager != nil {
				a.manager.Stop()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "output format: text|json")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&a.account, "account", "", "keystore account to use instead of the interactive chooser")

	root.AddCommand(newCampaignsCmd(a))
	root.AddCommand(newContributionCmd(a))
	root.AddCommand(newCreateCmd(a))
	root.AddCommand(newContributeCmd(a))
	root.AddCommand(newWithdrawCmd(a))
	root.AddCommand(newUploadCmd(a))
	root.AddCommand(newSessionCmd(a))
	return root
}

func (a *app) prepare(cmd *cobra.Command) error {
	if a.output != outputText && a.output != outputJSON {
		return failure.Newf(failure.CodeInvalidInput, "unknown output format %q", a.output)
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	if !a.verbose {
		logger.SetLevel(logrus.WarnLevel)
	}
	configuration.LoadEnv(logger)
	cfg := configuration.Load(logger)
	if !a.verbose {
		cfg.Log.Level = logrus.WarnLevel.String()
	}
	if a.account != "" {
		cfg.Wallet.Account = a.account
	}

	var opts []component.Option
	if a.account == "" {
		opts = append(opts, component.WithChooser(newPromptChooser(cmd.InOrStdin(), cmd.ErrOrStderr())))
	}
	m, err := component.Prepare(cmd.Context(), cfg, opts...)
	if err != nil {
		return failure.Wrap(failure.CodeInvalidInput, err, "invalid configuration")
	}
	m.Init(cmd.Context())
	a.manager = m
	return nil
}
