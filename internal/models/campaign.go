// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// UnresolvedID marks a campaign whose position in the ledger's full list is unknown.
const UnresolvedID int64 = -1

// StatusLive is the only status modelled; completion and expiry are not tracked.
const StatusLive = "Live"

// RawCampaign is a ledger campaign record in smallest units and Unix seconds.
type RawCampaign struct {
	Owner           common.Address
	Title           string
	Description     string
	Target          *big.Int
	Deadline        *big.Int
	AmountCollected *big.Int
	State           string
	Region          string
	Image           string
}

// Empty reports whether the ledger answered with a zeroed record.
func (r RawCampaign) Empty() bool {
	return r.Owner == (common.Address{}) && r.Title == "" &&
		(r.Target == nil || r.Target.Sign() == 0)
}

// Campaign is the normalized, display-ready form of RawCampaign.
//
// DisplayID is the record's position in the ledger's full campaign list. The ledger
// exposes no stable identifier, so a reordering or removal on the ledger side silently
// reassigns display ids.
type Campaign struct {
	DisplayID       int64  `json:"id"`
	Owner           string `json:"owner"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Target          string `json:"target"`
	AmountCollected string `json:"amountCollected"`
	Deadline        string `json:"deadline"`
	DeadlineUnix    int64  `json:"deadlineUnix"`
	Image           string `json:"image"`
	ImageRef        string `json:"imageRef"`
	State           string `json:"state"`
	Region          string `json:"region"`
	Status          string `json:"status"`

	raw RawCampaign
}

// Raw returns the record the view was built from.
func (c Campaign) Raw() RawCampaign {
	return c.raw
}

// WithRaw attaches the source record. Only the normalizer calls it.
func (c Campaign) WithRaw(r RawCampaign) Campaign {
	c.raw = r
	return c
}

// Donor is one (address, amount) pair of a campaign's donor registry.
type Donor struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// Contribution is what one address has given to one campaign.
type Contribution struct {
	CampaignID int64  `json:"campaignId"`
	Donor      string `json:"donor"`
	Amount     string `json:"amount"`
}

// Donation is a campaign the account contributed to, with the contributed amount.
type Donation struct {
	Campaign Campaign `json:"campaign"`
	Amount   string   `json:"amount"`
}

// CampaignFields is the create-campaign form.
type CampaignFields struct {
	Title       string
	Description string
	Target      string
	Deadline    time.Time
	State       string
	Region      string
	Image       string
}

// Receipt is the finalization proof of a write call.
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
}
