// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// StaticChooser picks a preconfigured account without asking anyone. A zero Address
// picks the first candidate.
type StaticChooser struct {
	Address    common.Address
	Passphrase string
}

func (c StaticChooser) Choose(_ context.Context, candidates []accounts.Account) (accounts.Account, string, error) {
	for _, a := range candidates {
		if c.Address == (common.Address{}) || a.Address == c.Address {
			return a, c.Passphrase, nil
		}
	}
	return accounts.Account{}, "", errors.Errorf("account %s is not in the keystore", c.Address.Hex())
}
