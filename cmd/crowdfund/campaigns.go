// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/models"
)

func newCampaignsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Read campaigns from the ledger",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every campaign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			campaigns, err := a.manager.Store().Campaigns(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), campaigns, campaignTable(campaigns))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			campaign, err := a.manager.Store().Campaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), campaign, campaignDetail(campaign))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "donors <id>",
		Short: "List the donors of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			donors, err := a.manager.Store().Donors(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), donors, func(w io.Writer) {
				fmt.Fprintln(w, "DONOR\tAMOUNT")
				for _, d := range donors {
					fmt.Fprintf(w, "%s\t%s\n", d.Address, d.Amount)
				}
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "owner [address]",
		Short: "List the campaigns created by an address (default: the connected account)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.addressArg(cmd, args)
			if err != nil {
				return err
			}
			campaigns, err := a.manager.Store().CampaignsByOwner(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), campaigns, campaignTable(campaigns))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "donated [address]",
		Short: "List the campaigns an address contributed to (default: the connected account)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			donor, err := a.addressArg(cmd, args)
			if err != nil {
				return err
			}
			donations, err := a.manager.Store().DonatedCampaigns(cmd.Context(), donor)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), donations, donationTable(donations))
		},
	})
	return cmd
}

func newContributionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contribution <id> [address]",
		Short: "Show what an address gave to a campaign (default: the connected account)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			donor, err := a.addressArg(cmd, args[1:])
			if err != nil {
				return err
			}
			c, err := a.manager.Store().Contribution(cmd.Context(), id, donor)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), c, func(w io.Writer) {
				fmt.Fprintf(w, "Campaign:\t%d\n", c.CampaignID)
				fmt.Fprintf(w, "Donor:\t%s\n", c.Donor)
				fmt.Fprintf(w, "Amount:\t%s\n", c.Amount)
			})
		},
	}
}

func donationTable(donations []models.Donation) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tCONTRIBUTED\tCOLLECTED\tSTATUS")
		for _, d := range donations {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.Campaign.DisplayID, d.Campaign.Title, d.Amount, d.Campaign.AmountCollected, d.Campaign.Status)
		}
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, failure.Newf(failure.CodeInvalidInput, "campaign id %q is not a non-negative integer", s)
	}
	return id, nil
}

// addressArg returns the explicit address or the session account, connecting when needed.
func (a *app) addressArg(cmd *cobra.Command, args []string) (common.Address, error) {
	if len(args) > 0 {
		if !common.IsHexAddress(args[0]) {
			return common.Address{}, failure.Newf(failure.CodeInvalidInput, "%q is not an address", args[0])
		}
		return common.HexToAddress(args[0]), nil
	}
	return a.manager.Session().Require(cmd.Context())
}
