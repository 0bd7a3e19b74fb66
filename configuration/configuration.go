// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package configuration

import (
	"time"

	"github.com/insolar/crowdfund/internal/pkg/cycle"
)

type Configuration struct {
	Log     Log
	Ledger  Ledger
	Wallet  Wallet
	Content Content
	Pinning Pinning
	Display Display
	Cache   Cache
	API     API
	Router  Router
}

type Log struct {
	Level string
	// text or json
	Format string
}

type Ledger struct {
	RPCURL          string
	ContractAddress string
	// contribute or donateToCampaign, depending on the deployed contract
	ContributeMethod string
	// Interval between receipt polls while a transaction awaits finalization
	PollInterval time.Duration
	// Parallel getContribution reads when building a donor dashboard
	Concurrency int
	Attempts    cycle.Limit
	// Interval between failed connection attempts
	AttemptInterval time.Duration
}

type Wallet struct {
	// rpc talks to an external wallet endpoint, keystore signs locally
	Mode        string
	URL         string
	KeystoreDir string
	// Used by the headless keystore chooser
	Account    string
	Passphrase string
}

type Content struct {
	GatewayURL     string
	PlaceholderURL string
	// Budget for checking that a resolved image is retrievable
	VerifyTimeout time.Duration
	VerifyImages  bool
}

type Pinning struct {
	Endpoint   string
	JWT        string
	Timeout    time.Duration
	MaxRetries int
}

type Display struct {
	DateLayout string
	TimeZone   string
}

type Cache struct {
	Size int
	TTL  time.Duration
}

type API struct {
	Listen string
}

// Router serves health check and metrics.
type Router struct {
	Listen string
}

const (
	WalletModeRPC      = "rpc"
	WalletModeKeystore = "keystore"
)

func Default() *Configuration {
	return &Configuration{
		Log: Log{
			Level:  "debug",
			Format: "text",
		},
		Ledger: Ledger{
			RPCURL:           "http://127.0.0.1:8545",
			ContractAddress:  "0x84c35E54f54BBb44c3Fb40d6E4d477B3E580F8a7",
			ContributeMethod: "contribute",
			PollInterval:     2 * time.Second,
			Concurrency:      8,
			Attempts:         5,
			AttemptInterval:  3 * time.Second,
		},
		Wallet: Wallet{
			Mode:        WalletModeRPC,
			URL:         "http://127.0.0.1:1248",
			KeystoreDir: ".artifacts/keystore",
		},
		Content: Content{
			GatewayURL:     "https://ipfs.io/ipfs/",
			PlaceholderURL: "https://via.placeholder.com/300",
			VerifyTimeout:  3 * time.Second,
		},
		Pinning: Pinning{
			Endpoint:   "https://api.pinata.cloud/pinning/pinFileToIPFS",
			Timeout:    time.Minute,
			MaxRetries: 3,
		},
		Display: Display{
			DateLayout: "1/2/2006",
			TimeZone:   "Local",
		},
		Cache: Cache{
			Size: 1024,
			TTL:  15 * time.Second,
		},
		API: API{
			Listen: ":8080",
		},
		Router: Router{
			Listen: ":8888",
		},
	}
}
