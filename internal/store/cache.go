// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

// Package store keeps recently read campaigns in memory in front of the ledger bridge.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/insolar/crowdfund/internal/models"
)

// Backend is the subset of the ledger bridge the store fronts.
type Backend interface {
	FetchAllCampaigns(ctx context.Context) ([]models.Campaign, error)
	FetchCampaign(ctx context.Context, id int64) (models.Campaign, error)
	FetchDonors(ctx context.Context, id int64) ([]models.Donor, error)
	FetchCampaignsByOwner(ctx context.Context, owner common.Address) ([]models.Campaign, error)
	FetchContribution(ctx context.Context, id int64, donor common.Address) (models.Contribution, error)
	FetchDonatedCampaigns(ctx context.Context, donor common.Address) ([]models.Donation, error)
	CreateCampaign(ctx context.Context, f models.CampaignFields) (models.Receipt, error)
	Contribute(ctx context.Context, id int64, amount string) (models.Receipt, error)
	Withdraw(ctx context.Context, view models.Campaign) (models.Receipt, error)
}

// CampaignStore caches campaign views for ttl. Mutations pass through and drop what they
// may have changed once they complete.
type CampaignStore struct {
	backend Backend
	cache   *lru.Cache
	ttl     time.Duration
	now     func() time.Time

	// serializes list refreshes so concurrent readers share one ledger call
	listMu sync.Mutex
}

func NewCampaignStore(backend Backend, size int, ttl time.Duration) (*CampaignStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init cache")
	}
	store := &CampaignStore{
		backend: backend,
		cache:   cache,
		ttl:     ttl,
		now:     time.Now,
	}
	return store, nil
}

type scope uint8

const (
	scopeCampaign scope = iota
	scopeList
)

type cacheKey struct {
	scope scope
	id    int64
}

type entry struct {
	value   interface{}
	expires time.Time
}

func (c *CampaignStore) setCache(key cacheKey, value interface{}) {
	e := entry{value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	_ = c.cache.Add(key, e)
}

func (c *CampaignStore) getCache(key cacheKey) (interface{}, bool) {
	val, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	e, ok := val.(entry)
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.cache.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (c *CampaignStore) Campaigns(ctx context.Context) ([]models.Campaign, error) {
	c.listMu.Lock()
	defer c.listMu.Unlock()

	if val, ok := c.getCache(cacheKey{scope: scopeList}); ok {
		if list, ok := val.([]models.Campaign); ok {
			return list, nil
		}
	}
	list, err := c.backend.FetchAllCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	c.setCache(cacheKey{scope: scopeList}, list)
	for _, v := range list {
		c.setCache(cacheKey{scope: scopeCampaign, id: v.DisplayID}, v)
	}
	return list, nil
}

func (c *CampaignStore) Campaign(ctx context.Context, id int64) (models.Campaign, error) {
	if val, ok := c.getCache(cacheKey{scope: scopeCampaign, id: id}); ok {
		if v, ok := val.(models.Campaign); ok {
			return v, nil
		}
	}
	v, err := c.backend.FetchCampaign(ctx, id)
	if err != nil {
		return models.Campaign{}, err
	}
	c.setCache(cacheKey{scope: scopeCampaign, id: id}, v)
	return v, nil
}

func (c *CampaignStore) Donors(ctx context.Context, id int64) ([]models.Donor, error) {
	return c.backend.FetchDonors(ctx, id)
}

func (c *CampaignStore) CampaignsByOwner(ctx context.Context, owner common.Address) ([]models.Campaign, error) {
	return c.backend.FetchCampaignsByOwner(ctx, owner)
}

func (c *CampaignStore) Contribution(ctx context.Context, id int64, donor common.Address) (models.Contribution, error) {
	return c.backend.FetchContribution(ctx, id, donor)
}

func (c *CampaignStore) DonatedCampaigns(ctx context.Context, donor common.Address) ([]models.Donation, error) {
	return c.backend.FetchDonatedCampaigns(ctx, donor)
}

func (c *CampaignStore) CreateCampaign(ctx context.Context, f models.CampaignFields) (models.Receipt, error) {
	receipt, err := c.backend.CreateCampaign(ctx, f)
	if err == nil {
		c.cache.Remove(cacheKey{scope: scopeList})
	}
	return receipt, err
}

func (c *CampaignStore) Contribute(ctx context.Context, id int64, amount string) (models.Receipt, error) {
	receipt, err := c.backend.Contribute(ctx, id, amount)
	if err == nil {
		c.Invalidate(id)
	}
	return receipt, err
}

// Withdraw runs the withdrawal against the view the store holds for id, which may lag
// behind the ledger. The view is dropped afterwards whatever the outcome.
func (c *CampaignStore) Withdraw(ctx context.Context, id int64) (models.Receipt, error) {
	view, err := c.Campaign(ctx, id)
	if err != nil {
		return models.Receipt{}, err
	}
	receipt, err := c.backend.Withdraw(ctx, view)
	c.Invalidate(id)
	return receipt, err
}

// Invalidate drops campaign id and the list it belongs to.
func (c *CampaignStore) Invalidate(id int64) {
	c.cache.Remove(cacheKey{scope: scopeCampaign, id: id})
	c.cache.Remove(cacheKey{scope: scopeList})
}

func (c *CampaignStore) Purge() {
	c.cache.Purge()
}
