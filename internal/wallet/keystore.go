// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package wallet

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/internal/failure"
)

// ErrDeclined is returned by a Chooser when the user closes the chooser.
var ErrDeclined = errors.New("account selection declined")

// Chooser is the interactive account picker. It returns the chosen account and the
// passphrase that unlocks it.
type Chooser interface {
	Choose(ctx context.Context, candidates []accounts.Account) (accounts.Account, string, error)
}

// KeyStore is satisfied by *keystore.KeyStore.
type KeyStore interface {
	Accounts() []accounts.Account
	Unlock(a accounts.Account, passphrase string) error
	Lock(addr common.Address) error
	SignTx(a accounts.Account, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// TxBackend is the part of the ledger client a local wallet needs to fill in and
// broadcast transactions. *ethclient.Client satisfies it.
type TxBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Keystore is a wallet backed by an encrypted key directory. Grants live only in memory.
type Keystore struct {
	ks      KeyStore
	chooser Chooser
	backend TxBackend
	log     logrus.FieldLogger

	mu      sync.Mutex
	granted []accounts.Account
}

func NewKeystore(ks KeyStore, chooser Chooser, backend TxBackend, log logrus.FieldLogger) *Keystore {
	return &Keystore{ks: ks, chooser: chooser, backend: backend, log: log}
}

func (w *Keystore) Accounts(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]common.Address, len(w.granted))
	for i, a := range w.granted {
		out[i] = a.Address
	}
	return out, nil
}

func (w *Keystore) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	candidates := w.ks.Accounts()
	if len(candidates) == 0 {
		return nil, failure.New(failure.CodeNoAccountGranted, "keystore holds no accounts")
	}
	chosen, passphrase, err := w.chooser.Choose(ctx, candidates)
	if err != nil {
		if errors.Is(err, ErrDeclined) || ctx.Err() != nil {
			return nil, failure.Wrap(failure.CodeUserRejected, err, "account selection was declined")
		}
		return nil, failure.Wrap(failure.CodeNoAccountGranted, err, "account selection failed")
	}
	if err := w.ks.Unlock(chosen, passphrase); err != nil {
		return nil, failure.Wrap(failure.CodeNoAccountGranted, err, "account could not be unlocked")
	}

	w.mu.Lock()
	previous := w.granted
	w.granted = []accounts.Account{chosen}
	w.mu.Unlock()
	for _, a := range previous {
		if a.Address != chosen.Address {
			_ = w.ks.Lock(a.Address)
		}
	}

	w.log.WithField("account", chosen.Address.Hex()).Info("keystore account granted")
	return []common.Address{chosen.Address}, nil
}

func (w *Keystore) RevokePermissions(context.Context) error {
	w.mu.Lock()
	granted := w.granted
	w.granted = nil
	w.mu.Unlock()
	for _, a := range granted {
		if err := w.ks.Lock(a.Address); err != nil {
			w.log.WithField("account", a.Address.Hex()).Warn(errors.Wrap(err, "failed to lock account"))
		}
	}
	return nil
}

func (w *Keystore) account(from common.Address) (accounts.Account, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range w.granted {
		if a.Address == from {
			return a, true
		}
	}
	return accounts.Account{}, false
}

func (w *Keystore) SendTransaction(ctx context.Context, from common.Address, req TxRequest) (common.Hash, error) {
	acc, ok := w.account(from)
	if !ok {
		return common.Hash{}, failure.Newf(failure.CodeNoAccountGranted, "account %s is not granted", from.Hex())
	}
	if w.backend == nil {
		return common.Hash{}, failure.New(failure.CodeProviderUnavailable, "no ledger connection to broadcast through")
	}

	tx, chainID, err := w.build(ctx, from, req)
	if err != nil {
		return common.Hash{}, err
	}
	signed, err := w.ks.SignTx(acc, tx, chainID)
	if err != nil {
		return common.Hash{}, failure.Wrap(failure.CodeNoAccountGranted, err, "transaction was not signed")
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, failure.Wrap(failure.CodeNetworkOrLedger, err, "transaction was not broadcast")
	}
	return signed.Hash(), nil
}

func (w *Keystore) build(ctx context.Context, from common.Address, req TxRequest) (*types.Transaction, *big.Int, error) {
	wrap := func(err error, msg string) error {
		return failure.Wrap(failure.CodeNetworkOrLedger, err, msg)
	}

	chainID, err := w.backend.ChainID(ctx)
	if err != nil {
		return nil, nil, wrap(err, "failed to read chain id")
	}
	nonce, err := w.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, nil, wrap(err, "failed to read account nonce")
	}
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	to := req.To

	gas := req.Gas
	if gas == 0 {
		gas, err = w.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Value: value, Data: req.Data})
		if err != nil {
			return nil, nil, wrap(err, "gas estimation failed")
		}
	}

	head, err := w.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, wrap(err, "failed to read latest header")
	}
	if head.BaseFee == nil {
		price, err := w.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, nil, wrap(err, "failed to suggest gas price")
		}
		return types.NewTx(&types.LegacyTx{
			Nonce: nonce, GasPrice: price, Gas: gas, To: &to, Value: value, Data: req.Data,
		}), chainID, nil
	}

	tip, err := w.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, wrap(err, "failed to suggest gas tip")
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	}), chainID, nil
}
