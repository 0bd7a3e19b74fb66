// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package wallet

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/internal/failure"
)

// Provider error codes defined by EIP-1193.
const (
	codeUserRejected     = 4001
	codeUnauthorized     = 4100
	codeUnsupported      = 4200
	codeDisconnected     = 4900
	codeChainUnavailable = 4901
)

// Caller is satisfied by *rpc.Client.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// RPC talks to an injected-style wallet through its JSON-RPC surface.
type RPC struct {
	client Caller
	log    logrus.FieldLogger
}

func NewRPC(client Caller, log logrus.FieldLogger) *RPC {
	return &RPC{client: client, log: log}
}

var accountsPermission = map[string]struct{}{"eth_accounts": {}}

func (w *RPC) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := w.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, classify(ctx, err, "failed to list wallet accounts")
	}
	return accounts, nil
}

func (w *RPC) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var granted json.RawMessage
	if err := w.client.CallContext(ctx, &granted, "wallet_requestPermissions", accountsPermission); err != nil {
		return nil, classify(ctx, err, "account permission request failed")
	}
	accounts, err := w.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, failure.New(failure.CodeNoAccountGranted, "wallet granted no accounts")
	}
	w.log.WithField("accounts", len(accounts)).Debug("wallet granted accounts")
	return accounts, nil
}

func (w *RPC) RevokePermissions(ctx context.Context) error {
	var out json.RawMessage
	if err := w.client.CallContext(ctx, &out, "wallet_revokePermissions", accountsPermission); err != nil {
		return classify(ctx, err, "failed to revoke account permission")
	}
	return nil
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

func (w *RPC) SendTransaction(ctx context.Context, from common.Address, tx TxRequest) (common.Hash, error) {
	to := tx.To
	args := sendTxArgs{From: from, To: &to, Data: tx.Data}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(tx.Value)
	}
	if tx.Gas > 0 {
		gas := hexutil.Uint64(tx.Gas)
		args.Gas = &gas
	}

	var hash common.Hash
	if err := w.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, classify(ctx, err, "transaction was not submitted")
	}
	return hash, nil
}

// classify converts provider failures into the taxonomy. Errors the wallet does not tag
// with a provider code stay NetworkOrLedger so that revert details survive for the bridge.
func classify(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil {
		return failure.Wrap(failure.CodeUserRejected, err, "wallet prompt was dismissed")
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return failure.Wrap(failure.CodeUserRejected, err, "request was declined in the wallet")
		case codeUnauthorized:
			return failure.Wrap(failure.CodeNoAccountGranted, err, "no account is granted to the application")
		case codeDisconnected, codeChainUnavailable:
			return failure.Wrap(failure.CodeProviderUnavailable, err, "wallet is disconnected")
		case codeUnsupported:
			return failure.Wrap(failure.CodeNetworkOrLedger, err, "wallet does not support the request")
		}
		return failure.Wrap(failure.CodeNetworkOrLedger, err, msg)
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return failure.Wrap(failure.CodeProviderUnavailable, err, "wallet endpoint answered HTTP "+httpErr.Status)
	}
	return failure.Wrap(failure.CodeProviderUnavailable, err, "wallet is unreachable")
}
