// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package connectivity

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/internal/ledger"
	"github.com/insolar/crowdfund/internal/pkg/cycle"
	"github.com/insolar/crowdfund/observability"
)

// Make dials the ledger and, in rpc mode, the wallet. A provider that cannot be reached
// stays nil; the bridge then reports it as unavailable instead of the process dying.
func Make(ctx context.Context, cfg *configuration.Configuration, obs *observability.Observability) *Connectivity {
	log := obs.Log()
	return &Connectivity{
		eth: func() *ethclient.Client {
			if cfg.Ledger.RPCURL == "" {
				log.Warn("no ledger endpoint configured")
				return nil
			}
			log.Infof("trying connect to %s...", configuration.MaskURL(cfg.Ledger.RPCURL))
			var client *ethclient.Client
			err := cycle.UntilConnectionError(ctx, func() error {
				c, err := dialLedger(ctx, cfg.Ledger.RPCURL)
				if err != nil {
					return err
				}
				client = c
				return nil
			}, cfg.Ledger.AttemptInterval, cfg.Ledger.Attempts, log)
			if err != nil {
				log.Error(errors.Wrapf(err, "failed to connect to the ledger"))
				return nil
			}
			return client
		}(),
		wallet: func() *rpc.Client {
			if cfg.Wallet.Mode != configuration.WalletModeRPC {
				return nil
			}
			if cfg.Wallet.URL == "" {
				log.Warn("no wallet endpoint configured")
				return nil
			}
			client, err := rpc.DialContext(ctx, cfg.Wallet.URL)
			if err != nil {
				log.Error(errors.Wrapf(err, "failed to dial the wallet"))
				return nil
			}
			return client
		}(),
	}
}

func dialLedger(ctx context.Context, url string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial")
	}
	if _, err := client.ChainID(ctx); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to read chain id")
	}
	return client, nil
}

type Connectivity struct {
	eth    *ethclient.Client
	wallet *rpc.Client
}

func (c *Connectivity) Eth() *ethclient.Client {
	return c.eth
}

// Ledger returns the ledger backend or an untyped nil when it is not connected.
func (c *Connectivity) Ledger() ledger.Backend {
	if c.eth == nil {
		return nil
	}
	return c.eth
}

func (c *Connectivity) WalletRPC() *rpc.Client {
	return c.wallet
}

func (c *Connectivity) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
	if c.wallet != nil {
		c.wallet.Close()
	}
}
