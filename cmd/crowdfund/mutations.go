// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/ledger"
	"github.com/insolar/crowdfund/internal/models"
	"github.com/insolar/crowdfund/internal/normalize"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		fields    models.CampaignFields
		deadline  string
		imageFile string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign and wait for the ledger to confirm it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := normalize.ParseDeadline(deadline)
			if err != nil {
				return err
			}
			fields.Deadline = d
			if err := prepareCampaign(cmd.Context(), &fields, imageFile, a.manager.Pinning(), time.Now()); err != nil {
				return err
			}
			receipt, err := a.manager.Store().CreateCampaign(cmd.Context(), fields)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), receipt, receiptDetail(receipt))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&fields.Title, "title", "", "campaign title")
	flags.StringVar(&fields.Description, "description", "", "campaign description")
	flags.StringVar(&fields.Target, "target", "", "target amount in ether")
	flags.StringVar(&deadline, "deadline", "", "deadline as YYYY-MM-DD or RFC 3339")
	flags.StringVar(&fields.State, "state", "", "state")
	flags.StringVar(&fields.Region, "region", "", "region")
	flags.StringVar(&fields.Image, "image", "", "image content id or URL")
	flags.StringVar(&imageFile, "image-file", "", "image file to pin and attach")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

type attacher interface {
	Attach(ctx context.Context, f *models.CampaignFields, filename string, r io.Reader) error
}

// prepareCampaign validates the form and only then pins the image file, if any.
func prepareCampaign(ctx context.Context, fields *models.CampaignFields, imageFile string, pin attacher, now time.Time) error {
	if _, err := ledger.ValidateCampaign(*fields, now); err != nil {
		return err
	}
	if imageFile == "" {
		return nil
	}
	f, err := os.Open(imageFile)
	if err != nil {
		return failure.Wrap(failure.CodeInvalidInput, err, "image file cannot be read")
	}
	defer f.Close()
	return pin.Attach(ctx, fields, filepath.Base(imageFile), f)
}

func newContributeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <id> <amount>",
		Short: "Contribute an ether amount to a campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			receipt, err := a.manager.Store().Contribute(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), receipt, receiptDetail(receipt))
		},
	}
}

func newWithdrawCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Withdraw the collected funds of a campaign that reached its target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			receipt, err := a.manager.Store().Withdraw(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), receipt, receiptDetail(receipt))
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Pin an image and print its content id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return failure.Wrap(failure.CodeInvalidInput, err, "image file cannot be read")
			}
			defer f.Close()
			cid, err := a.manager.Pinning().Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			resolved := a.manager.Images().Resolve(cid)
			return a.render(cmd.OutOrStdout(), map[string]string{"image": cid, "url": resolved}, func(w io.Writer) {
				fmt.Fprintf(w, "Content id:\t%s\n", cid)
				fmt.Fprintf(w, "URL:\t%s\n", resolved)
			})
		},
	}
}
