// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/models"
	"github.com/insolar/crowdfund/internal/normalize"
)

func (b *Bridge) read(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	h, err := b.ReadHandle()
	if err != nil {
		return nil, err
	}
	out, err := h.Call(ctx, method, args...)
	if err != nil {
		b.report(b.log.WithField("method", method), err)
		return nil, err
	}
	return out, nil
}

// FetchAllCampaigns returns every campaign with its position in the list as display id.
func (b *Bridge) FetchAllCampaigns(ctx context.Context) ([]models.Campaign, error) {
	out, err := b.read(ctx, MethodAllCampaigns)
	if err != nil {
		return nil, err
	}
	return b.norm.Campaigns(out)
}

func (b *Bridge) allRecords(ctx context.Context) ([]models.RawCampaign, error) {
	out, err := b.read(ctx, MethodAllCampaigns)
	if err != nil {
		return nil, err
	}
	return b.norm.Records(out)
}

func (b *Bridge) FetchCampaign(ctx context.Context, id int64) (models.Campaign, error) {
	if id < 0 {
		return models.Campaign{}, failure.Newf(failure.CodeCampaignNotFound, "campaign %d does not exist", id)
	}
	out, err := b.read(ctx, MethodCampaign, big.NewInt(id))
	if err != nil {
		if isRevert(err) {
			return models.Campaign{}, failure.Force(failure.CodeCampaignNotFound, err, "campaign does not exist")
		}
		return models.Campaign{}, err
	}
	r, err := b.norm.Record(out)
	if err != nil {
		return models.Campaign{}, err
	}
	if r.Empty() {
		return models.Campaign{}, failure.Newf(failure.CodeCampaignNotFound, "campaign %d does not exist", id)
	}
	return b.norm.View(id, r), nil
}

// FetchDonors lists the donors of a campaign. A ledger refusal means there are no donors
// to list and yields an empty list; transport failures are returned.
func (b *Bridge) FetchDonors(ctx context.Context, id int64) ([]models.Donor, error) {
	if id < 0 {
		return []models.Donor{}, nil
	}
	out, err := b.read(ctx, MethodDonors, big.NewInt(id))
	if err != nil {
		if isRevert(err) {
			b.log.WithField("campaign", id).WithError(err).Debug("donor query refused, no donors")
			return []models.Donor{}, nil
		}
		return nil, err
	}
	return b.norm.Donors(out)
}

// FetchCampaignsByOwner lists the campaigns created by owner. The owner query carries no
// positions, so display ids are resolved against the full list; records that cannot be
// matched get models.UnresolvedID.
func (b *Bridge) FetchCampaignsByOwner(ctx context.Context, owner common.Address) ([]models.Campaign, error) {
	var owned, all []models.RawCampaign

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := b.read(gctx, MethodCampaignsByOwner, owner)
		if err != nil {
			return err
		}
		owned, err = b.norm.Records(out)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = b.allRecords(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := resolveIDs(owned, all)
	views := make([]models.Campaign, len(owned))
	for i, r := range owned {
		views[i] = b.norm.View(ids[i], r)
	}
	return views, nil
}

func (b *Bridge) FetchContribution(ctx context.Context, id int64, donor common.Address) (models.Contribution, error) {
	amount, err := b.contribution(ctx, id, donor)
	if err != nil {
		return models.Contribution{}, err
	}
	return models.Contribution{
		CampaignID: id,
		Donor:      donor.Hex(),
		Amount:     normalize.FormatEther(amount),
	}, nil
}

// contribution reads what donor gave to campaign id. A ledger refusal counts as nothing
// given; transport failures are returned.
func (b *Bridge) contribution(ctx context.Context, id int64, donor common.Address) (*big.Int, error) {
	if id < 0 {
		return nil, failure.Newf(failure.CodeCampaignNotFound, "campaign %d does not exist", id)
	}
	out, err := b.read(ctx, MethodContribution, big.NewInt(id), donor)
	if err != nil {
		if isRevert(err) {
			b.log.WithField("campaign", id).WithError(err).Debug("contribution query refused, nothing given")
			return new(big.Int), nil
		}
		return nil, err
	}
	return b.norm.Amount(out)
}

// FetchDonatedCampaigns lists the campaigns donor contributed to, in display id order.
func (b *Bridge) FetchDonatedCampaigns(ctx context.Context, donor common.Address) ([]models.Donation, error) {
	campaigns, err := b.FetchAllCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	amounts := make([]*big.Int, len(campaigns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)
	for i := range campaigns {
		i := i
		g.Go(func() error {
			amount, err := b.contribution(gctx, campaigns[i].DisplayID, donor)
			if err != nil {
				return err
			}
			amounts[i] = amount
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	donations := []models.Donation{}
	for i, c := range campaigns {
		if amounts[i].Sign() > 0 {
			donations = append(donations, models.Donation{Campaign: c, Amount: normalize.FormatEther(amounts[i])})
		}
	}
	return donations, nil
}

// resolveIDs finds the position of every owned record in the full list. Each position is
// used once, so identical twins resolve to distinct ids in order.
func resolveIDs(owned, all []models.RawCampaign) []int64 {
	used := make([]bool, len(all))
	ids := make([]int64, len(owned))
	for i, r := range owned {
		ids[i] = models.UnresolvedID
		for j, candidate := range all {
			if !used[j] && sameCampaign(r, candidate) {
				used[j] = true
				ids[i] = int64(j)
				break
			}
		}
	}
	return ids
}

// sameCampaign compares the fields fixed at creation. The collected amount may differ
// between two reads of the same record.
func sameCampaign(a, b models.RawCampaign) bool {
	return a.Owner == b.Owner &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.State == b.State &&
		a.Region == b.Region &&
		a.Image == b.Image &&
		cmpInt(a.Target, b.Target) &&
		cmpInt(a.Deadline, b.Deadline)
}

func cmpInt(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
