// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

// Package session owns the process-wide wallet session.
//
// Only Controller mutates the connected account; everything else reads it through Viewer.
package session

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/wallet"
)

// Viewer is the read-only side of the session.
type Viewer interface {
	Account() (common.Address, bool)
}

type Controller struct {
	wallet wallet.Wallet
	log    logrus.FieldLogger

	mu      sync.RWMutex
	account *common.Address

	// connectMu keeps at most one chooser open.
	connectMu sync.Mutex
}

func New(w wallet.Wallet, log logrus.FieldLogger) *Controller {
	return &Controller{wallet: w, log: log}
}

func (c *Controller) Account() (common.Address, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.account == nil {
		return common.Address{}, false
	}
	return *c.account, true
}

func (c *Controller) set(addr *common.Address) {
	c.mu.Lock()
	c.account = addr
	c.mu.Unlock()
}

func (c *Controller) requireWallet() error {
	if c.wallet == nil {
		return failure.New(failure.CodeProviderUnavailable, "no wallet detected; install or unlock a wallet to continue")
	}
	return nil
}

// Init adopts an account the wallet already granted, without prompting. An empty grant
// leaves the session disconnected.
func (c *Controller) Init(ctx context.Context) error {
	if err := c.requireWallet(); err != nil {
		return err
	}
	accounts, err := c.wallet.Accounts(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read granted accounts")
	}
	if len(accounts) == 0 {
		c.log.Debug("wallet has no granted accounts")
		return nil
	}
	c.set(&accounts[0])
	c.log.WithField("account", accounts[0].Hex()).Info("restored wallet session")
	return nil
}

// Connect always goes through the wallet's chooser and stores the first selected account.
// A declined prompt leaves the previous session untouched.
func (c *Controller) Connect(ctx context.Context) (common.Address, error) {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()
	return c.connect(ctx)
}

func (c *Controller) connect(ctx context.Context) (common.Address, error) {
	if err := c.requireWallet(); err != nil {
		return common.Address{}, err
	}
	accounts, err := c.wallet.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, failure.New(failure.CodeNoAccountGranted, "wallet granted no accounts")
	}
	addr := accounts[0]
	c.set(&addr)
	c.log.WithField("account", addr.Hex()).Info("wallet connected")
	return addr, nil
}

// Disconnect revokes the grant and clears the session. The session is cleared even when
// the wallet cannot revoke, so the user is never left half connected.
func (c *Controller) Disconnect(ctx context.Context) error {
	if err := c.requireWallet(); err != nil {
		return err
	}
	err := c.wallet.RevokePermissions(ctx)
	c.set(nil)
	if err != nil {
		c.log.WithError(err).Warn("wallet did not revoke the permission")
		return err
	}
	c.log.Info("wallet disconnected")
	return nil
}

// Require returns the connected account, connecting through the chooser when there is
// none. Write handles call it before every state change.
func (c *Controller) Require(ctx context.Context) (common.Address, error) {
	if addr, ok := c.Account(); ok {
		return addr, nil
	}
	c.connectMu.Lock()
	defer c.connectMu.Unlock()
	if addr, ok := c.Account(); ok {
		return addr, nil
	}
	return c.connect(ctx)
}
