// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

// Package wallet abstracts the user's signing identity: account enumeration, permission
// grants and revocation, and sending state-changing transactions.
package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest is a call the wallet signs and broadcasts on behalf of an account.
type TxRequest struct {
	To    common.Address
	Value *big.Int
	Data  []byte
	// Gas is optional; zero lets the wallet estimate.
	Gas uint64
}

// Wallet is the provider surface the bridge consumes. Every method may block on the user
// for as long as the user likes; callers cancel through ctx.
type Wallet interface {
	// Accounts returns the accounts already granted to the application, without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// RequestAccounts always shows an account chooser, even when a grant exists.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// RevokePermissions withdraws the account grant.
	RevokePermissions(ctx context.Context) error
	// SendTransaction asks the user to approve tx from the given account and returns the
	// submitted transaction hash.
	SendTransaction(ctx context.Context, from common.Address, tx TxRequest) (common.Hash, error)
}
