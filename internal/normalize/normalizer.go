// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

// Package normalize converts raw ledger outputs into display models.
//
// This is the only package that indexes into positional ABI outputs; everything
// downstream works with models.RawCampaign and the view types.
package normalize

import (
	"math/big"
	"reflect"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/models"
)

// Positions of the campaign record fields in the ledger's tuple.
const (
	fieldOwner = iota
	fieldTitle
	fieldDescription
	fieldTarget
	fieldDeadline
	fieldAmountCollected
	fieldState
	fieldRegion
	fieldImage

	campaignFields
)

type Normalizer struct {
	Images   *ImageResolver
	Layout   string
	Location *time.Location
}

func New(images *ImageResolver, layout string, loc *time.Location) *Normalizer {
	if images == nil {
		images = NewImageResolver("", "", 0)
	}
	return &Normalizer{Images: images, Layout: layout, Location: loc}
}

func malformed(format string, args ...interface{}) error {
	return failure.Newf(failure.CodeNetworkOrLedger, "malformed ledger response: "+format, args...)
}

// Record decodes one positional campaign tuple.
func (n *Normalizer) Record(fields []interface{}) (models.RawCampaign, error) {
	if len(fields) < campaignFields {
		return models.RawCampaign{}, malformed("campaign has %d fields, want %d", len(fields), campaignFields)
	}
	var (
		r  models.RawCampaign
		ok bool
	)
	if r.Owner, ok = fields[fieldOwner].(common.Address); !ok {
		return models.RawCampaign{}, malformed("owner is %T", fields[fieldOwner])
	}
	strs := []struct {
		dst *string
		pos int
	}{
		{&r.Title, fieldTitle},
		{&r.Description, fieldDescription},
		{&r.State, fieldState},
		{&r.Region, fieldRegion},
		{&r.Image, fieldImage},
	}
	for _, s := range strs {
		if *s.dst, ok = fields[s.pos].(string); !ok {
			return models.RawCampaign{}, malformed("field %d is %T", s.pos, fields[s.pos])
		}
	}
	ints := []struct {
		dst **big.Int
		pos int
	}{
		{&r.Target, fieldTarget},
		{&r.Deadline, fieldDeadline},
		{&r.AmountCollected, fieldAmountCollected},
	}
	for _, i := range ints {
		if *i.dst, ok = fields[i.pos].(*big.Int); !ok || *i.dst == nil {
			return models.RawCampaign{}, malformed("field %d is %T", i.pos, fields[i.pos])
		}
	}
	return r, nil
}

// View builds the display model of a decoded record.
func (n *Normalizer) View(displayID int64, r models.RawCampaign) models.Campaign {
	c := models.Campaign{
		DisplayID:       displayID,
		Owner:           r.Owner.Hex(),
		Title:           r.Title,
		Description:     r.Description,
		Target:          FormatEther(r.Target),
		AmountCollected: FormatEther(r.AmountCollected),
		Deadline:        FormatDeadline(r.Deadline, n.Layout, n.Location),
		Image:           n.Images.Resolve(r.Image),
		ImageRef:        r.Image,
		State:           r.State,
		Region:          r.Region,
		Status:          models.StatusLive,
	}
	if r.Deadline != nil && r.Deadline.IsInt64() {
		c.DeadlineUnix = r.Deadline.Int64()
	}
	return c.WithRaw(r)
}

// Campaign decodes and normalizes a single-record read.
func (n *Normalizer) Campaign(displayID int64, fields []interface{}) (models.Campaign, error) {
	r, err := n.Record(fields)
	if err != nil {
		return models.Campaign{}, err
	}
	return n.View(displayID, r), nil
}

// Records decodes a tuple-array read (the single output of a bulk query).
func (n *Normalizer) Records(out []interface{}) ([]models.RawCampaign, error) {
	if len(out) != 1 {
		return nil, malformed("bulk read has %d outputs, want 1", len(out))
	}
	list := reflect.ValueOf(out[0])
	if list.Kind() != reflect.Slice && list.Kind() != reflect.Array {
		return nil, malformed("bulk read output is %T", out[0])
	}
	records := make([]models.RawCampaign, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		fields, ok := tupleFields(list.Index(i))
		if !ok {
			return nil, malformed("campaign %d is %s", i, list.Index(i).Type())
		}
		r, err := n.Record(fields)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Campaigns normalizes a tuple-array read, assigning each record its array index as the
// display id.
func (n *Normalizer) Campaigns(out []interface{}) ([]models.Campaign, error) {
	records, err := n.Records(out)
	if err != nil {
		return nil, err
	}
	views := make([]models.Campaign, len(records))
	for i, r := range records {
		views[i] = n.View(int64(i), r)
	}
	return views, nil
}

// Donors pairs the address and amount arrays of a donor query positionally. An amount
// missing for an address counts as zero; amounts without an address are dropped.
func (n *Normalizer) Donors(out []interface{}) ([]models.Donor, error) {
	if len(out) == 0 {
		return []models.Donor{}, nil
	}
	addresses, ok := out[0].([]common.Address)
	if !ok {
		return nil, malformed("donor addresses are %T", out[0])
	}
	var amounts []*big.Int
	if len(out) > 1 {
		if amounts, ok = out[1].([]*big.Int); !ok {
			return nil, malformed("donor amounts are %T", out[1])
		}
	}

	donors := make([]models.Donor, len(addresses))
	for i, addr := range addresses {
		var amount *big.Int
		if i < len(amounts) {
			amount = amounts[i]
		}
		donors[i] = models.Donor{Address: addr.Hex(), Amount: FormatEther(amount)}
	}
	return donors, nil
}

// Amount decodes a single uint256 output.
func (n *Normalizer) Amount(out []interface{}) (*big.Int, error) {
	if len(out) != 1 {
		return nil, malformed("amount read has %d outputs, want 1", len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok || v == nil {
		return nil, malformed("amount is %T", out[0])
	}
	return v, nil
}

func tupleFields(v reflect.Value) ([]interface{}, bool) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		fields := make([]interface{}, v.NumField())
		for i := range fields {
			f := v.Field(i)
			if !f.CanInterface() {
				return nil, false
			}
			fields[i] = f.Interface()
		}
		return fields, true
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() != reflect.Interface {
			return nil, false
		}
		fields := make([]interface{}, v.Len())
		for i := range fields {
			fields[i] = v.Index(i).Interface()
		}
		return fields, true
	}
	return nil, false
}
