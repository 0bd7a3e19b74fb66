// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package component

import (
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/connectivity"
	"github.com/insolar/crowdfund/internal/wallet"
	"github.com/insolar/crowdfund/observability"
)

// Option adjusts how Prepare wires the process.
type Option func(*options)

type options struct {
	chooser wallet.Chooser
}

// WithChooser replaces the configured keystore account with an interactive picker.
func WithChooser(c wallet.Chooser) Option {
	return func(o *options) {
		o.chooser = c
	}
}

// makeWallet returns an untyped nil when no wallet can be reached.
func makeWallet(cfg *configuration.Configuration, obs *observability.Observability, conn *connectivity.Connectivity, opts options) wallet.Wallet {
	log := obs.Log()
	switch cfg.Wallet.Mode {
	case configuration.WalletModeKeystore:
		eth := conn.Eth()
		if eth == nil {
			log.Warn("keystore wallet needs a ledger connection, no wallet available")
			return nil
		}
		chooser := opts.chooser
		if chooser == nil {
			chooser = wallet.StaticChooser{
				Address:    common.HexToAddress(cfg.Wallet.Account),
				Passphrase: cfg.Wallet.Passphrase,
			}
		}
		ks := keystore.NewKeyStore(cfg.Wallet.KeystoreDir, keystore.StandardScryptN, keystore.StandardScryptP)
		log.Infof("using keystore wallet at %s", cfg.Wallet.KeystoreDir)
		return wallet.NewKeystore(ks, chooser, eth, log.WithField("wallet", "keystore"))
	case configuration.WalletModeRPC:
		client := conn.WalletRPC()
		if client == nil {
			return nil
		}
		return wallet.NewRPC(client, log.WithField("wallet", "rpc"))
	default:
		log.Warnf("unknown wallet mode %q, no wallet available", cfg.Wallet.Mode)
		return nil
	}
}
