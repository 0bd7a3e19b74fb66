// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package ledger

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/models"
	"github.com/insolar/crowdfund/internal/normalize"
)

// noCampaign keys writes that are not bound to an existing campaign.
const noCampaign int64 = -1

// ValidateCampaign checks the create form against now and returns the target in wei.
func ValidateCampaign(f models.CampaignFields, now time.Time) (*big.Int, error) {
	if strings.TrimSpace(f.Title) == "" {
		return nil, failure.New(failure.CodeInvalidInput, "title is required")
	}
	target, err := normalize.ParsePositive(f.Target)
	if err != nil {
		return nil, err
	}
	if f.Deadline.IsZero() || !f.Deadline.After(now) {
		return nil, failure.New(failure.CodeInvalidInput, "deadline must be a future date")
	}
	return target, nil
}

// CreateCampaign validates the form, submits it and returns once the ledger finalized it.
// Nothing reaches the wallet when validation fails.
func (b *Bridge) CreateCampaign(ctx context.Context, f models.CampaignFields) (models.Receipt, error) {
	target, err := ValidateCampaign(f, b.now())
	if err != nil {
		return models.Receipt{}, err
	}

	return b.transact(ctx, MethodCreateCampaign, noCampaign, nil,
		f.Title,
		f.Description,
		target,
		normalize.DeadlineSeconds(f.Deadline),
		f.State,
		f.Region,
		f.Image,
	)
}

// Contribute sends amount (a decimal in whole units) to campaign id.
func (b *Bridge) Contribute(ctx context.Context, id int64, amount string) (models.Receipt, error) {
	if id < 0 {
		return models.Receipt{}, failure.Newf(failure.CodeInvalidInput, "invalid campaign id %d", id)
	}
	value, err := normalize.ParsePositive(amount)
	if err != nil {
		return models.Receipt{}, err
	}
	return b.transact(ctx, b.cfg.ContributeMethod, id, value, big.NewInt(id))
}

// Withdraw requests the collected funds of the campaign behind view. The collected amount
// must have reached the target in view; the ledger's own refusal is WITHDRAWAL_REJECTED.
func (b *Bridge) Withdraw(ctx context.Context, view models.Campaign) (models.Receipt, error) {
	if view.DisplayID < 0 {
		return models.Receipt{}, failure.New(failure.CodeInvalidInput, "campaign position is unknown, reload the campaign list")
	}
	collected, err := normalize.ParseEther(view.AmountCollected)
	if err != nil {
		return models.Receipt{}, err
	}
	target, err := normalize.ParseEther(view.Target)
	if err != nil {
		return models.Receipt{}, err
	}
	if collected.Cmp(target) < 0 {
		return models.Receipt{}, failure.Newf(failure.CodeTargetNotReached,
			"collected %s of %s, the target is not reached yet", view.AmountCollected, view.Target)
	}

	receipt, err := b.transact(ctx, MethodWithdrawFunds, view.DisplayID, nil, big.NewInt(view.DisplayID))
	if err != nil && isRevert(err) {
		return receipt, failure.Force(failure.CodeWithdrawalRejected, err, "the ledger refused the withdrawal")
	}
	return receipt, err
}

func (b *Bridge) transact(ctx context.Context, method string, campaign int64, value *big.Int, args ...interface{}) (models.Receipt, error) {
	log := b.log.WithFields(logrus.Fields{
		"op":       uuid.New().String(),
		"method":   method,
		"campaign": campaign,
	})

	h, err := b.WriteHandle(ctx)
	if err != nil {
		b.report(log, err)
		return models.Receipt{}, err
	}
	log = log.WithField("account", h.From().Hex())

	release, err := b.guard.Acquire(method, campaign, h.From())
	if err != nil {
		log.Info("duplicate submission refused")
		return models.Receipt{}, err
	}
	defer release()

	hash, err := h.Submit(ctx, method, value, args...)
	if err != nil {
		b.report(log, err)
		return models.Receipt{}, err
	}
	log = log.WithField("tx", hash.Hex())
	log.Info("transaction submitted, awaiting finalization")

	receipt, err := h.Wait(ctx, hash)
	if err != nil {
		b.report(log, err)
		return models.Receipt{TxHash: hash.Hex()}, err
	}
	log.WithField("block", receipt.BlockNumber).Info("transaction finalized")

	r := models.Receipt{TxHash: hash.Hex(), GasUsed: receipt.GasUsed}
	if receipt.BlockNumber != nil {
		r.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return r, nil
}

// report logs a classified failure at the level its kind deserves.
func (b *Bridge) report(log logrus.FieldLogger, err error) {
	code := failure.CodeOf(err)
	log = log.WithField("code", code)
	switch {
	case code == failure.CodeUserRejected || code == failure.CodeNoAccountGranted:
		log.Info(failure.MessageOf(err))
	case isRevert(err):
		b.metrics.Rejections.Inc()
		log.WithError(err).Warn("ledger rejected the call")
	case code == failure.CodeNetworkOrLedger:
		b.metrics.Failures.Inc()
		log.WithError(err).Error("ledger request failed")
	default:
		log.WithError(err).Warn(failure.MessageOf(err))
	}
}
