// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

// Package ledger binds the crowdfunding contract to the wallet session and converts every
// ledger outcome into the failure taxonomy.
package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/normalize"
	"github.com/insolar/crowdfund/internal/wallet"
	"github.com/insolar/crowdfund/observability"
)

// Backend is the read side of the ledger provider.
type Backend interface {
	ethereum.ContractCaller
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// AccountSource yields the signing account, prompting the user when none is granted.
type AccountSource interface {
	Require(ctx context.Context) (common.Address, error)
}

type Config struct {
	Address          common.Address
	ContributeMethod string
	PollInterval     time.Duration
	Concurrency      int
}

type Bridge struct {
	cfg      Config
	abi      abi.ABI
	backend  Backend
	wallet   wallet.Wallet
	accounts AccountSource
	norm     *normalize.Normalizer
	guard    *Guard
	log      logrus.FieldLogger
	metrics  *observability.LedgerMetrics
	now      func() time.Time
}

// New builds a bridge. A nil backend or wallet is a valid state: every operation that
// needs the missing provider fails with PROVIDER_UNAVAILABLE.
func New(
	cfg Config,
	backend Backend,
	w wallet.Wallet,
	accounts AccountSource,
	norm *normalize.Normalizer,
	obs *observability.Observability,
) *Bridge {
	if cfg.ContributeMethod != MethodDonateToCampaign {
		cfg.ContributeMethod = MethodContribute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if norm == nil {
		norm = normalize.New(nil, normalize.DefaultDateLayout, time.Local)
	}
	return &Bridge{
		cfg:      cfg,
		abi:      ContractABI,
		backend:  backend,
		wallet:   w,
		accounts: accounts,
		norm:     norm,
		guard:    NewGuard(),
		log:      obs.Log().WithField("component", "ledger"),
		metrics:  observability.MakeLedgerMetrics(obs),
		now:      time.Now,
	}
}

func (b *Bridge) Normalizer() *normalize.Normalizer {
	return b.norm
}

func providerUnavailable() error {
	return failure.New(failure.CodeProviderUnavailable, "no wallet detected; install or unlock a wallet to continue")
}

// ReadHandle is bound to the contract for view calls.
type ReadHandle struct {
	b *Bridge
}

// WriteHandle is bound to the contract and to the signing account.
type WriteHandle struct {
	b    *Bridge
	from common.Address
}

func (b *Bridge) ReadHandle() (*ReadHandle, error) {
	if b.backend == nil {
		return nil, providerUnavailable()
	}
	return &ReadHandle{b: b}, nil
}

// WriteHandle may prompt the user for account access and blocks for as long as the prompt
// stays open.
func (b *Bridge) WriteHandle(ctx context.Context) (*WriteHandle, error) {
	if b.backend == nil || b.wallet == nil || b.accounts == nil {
		return nil, providerUnavailable()
	}
	from, err := b.accounts.Require(ctx)
	if err != nil {
		return nil, err
	}
	return &WriteHandle{b: b, from: from}, nil
}

// Call performs a view call and returns the unpacked positional outputs.
func (h *ReadHandle) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	b := h.b
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, failure.Wrapf(failure.CodeInvalidInput, err, "invalid arguments for %s", method)
	}
	b.metrics.Reads.Inc()

	out, err := b.backend.CallContract(ctx, ethereum.CallMsg{To: &b.cfg.Address, Data: data}, nil)
	if err != nil {
		if isRevert(err) {
			return nil, failure.Wrapf(failure.CodeNetworkOrLedger, rejected(err), "ledger rejected %s", method)
		}
		return nil, failure.Wrapf(failure.CodeNetworkOrLedger, err, "ledger call %s failed", method)
	}
	if len(out) == 0 {
		return nil, failure.Wrapf(failure.CodeNetworkOrLedger, errNoOutput,
			"ledger returned nothing for %s, is a contract deployed at %s?", method, b.cfg.Address.Hex())
	}
	values, err := b.abi.Unpack(method, out)
	if err != nil {
		return nil, failure.Wrapf(failure.CodeNetworkOrLedger, err, "malformed ledger response to %s", method)
	}
	return values, nil
}

func (h *WriteHandle) From() common.Address {
	return h.from
}

// Submit asks the wallet to sign and broadcast the call and returns the transaction hash.
// The call has not taken effect until Wait confirms it.
func (h *WriteHandle) Submit(ctx context.Context, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
	b := h.b
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, failure.Wrapf(failure.CodeInvalidInput, err, "invalid arguments for %s", method)
	}
	hash, err := b.wallet.SendTransaction(ctx, h.from, wallet.TxRequest{
		To:    b.cfg.Address,
		Value: value,
		Data:  data,
	})
	if err != nil {
		if failure.CodeOf(err) == failure.CodeNetworkOrLedger && isRevert(err) {
			return common.Hash{}, failure.Wrapf(failure.CodeNetworkOrLedger, rejected(err), "ledger rejected %s", method)
		}
		return common.Hash{}, failure.Wrapf(failure.CodeNetworkOrLedger, err, "%s was not submitted", method)
	}
	b.metrics.Writes.Inc()
	return hash, nil
}

// Wait polls for the receipt of hash until it is finalized or ctx is done. There is no
// timeout of its own.
func (h *WriteHandle) Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	b := h.b
	log := b.log.WithField("tx", hash.Hex())
	started := b.now()

	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()
	for {
		receipt, err := b.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			b.metrics.Confirmations.Inc()
			b.metrics.ConfirmationTime.Observe(b.now().Sub(started).Seconds())
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, failure.Wrapf(failure.CodeNetworkOrLedger, errReverted, "transaction %s reverted", hash.Hex())
			}
			return receipt, nil
		case err == nil, errors.Is(err, ethereum.NotFound):
			log.Debug("transaction is not finalized yet")
		default:
			log.WithError(err).Debug("failed to read receipt, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, failure.Wrapf(failure.CodeNetworkOrLedger, ctx.Err(),
				"transaction %s was submitted but not confirmed", hash.Hex())
		case <-ticker.C:
		}
	}
}
