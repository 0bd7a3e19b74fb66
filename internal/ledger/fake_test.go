// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package ledger

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/normalize"
	"github.com/insolar/crowdfund/internal/session"
	"github.com/insolar/crowdfund/internal/wallet"
	"github.com/insolar/crowdfund/observability"
)

var (
	contractAddr = common.HexToAddress("0x84c35E54f54BBb44c3Fb40d6E4d477B3E580F8a7")
	ownerAddr    = common.HexToAddress("0x00000000000000000000000000000000000A1234")
	donorAddr    = common.HexToAddress("0x0000000000000000000000000000000000ABC123")
)

// record mirrors the contract's campaign struct so the ABI can pack it.
type record struct {
	Owner           common.Address
	Title           string
	Description     string
	Target          *big.Int
	Deadline        *big.Int
	AmountCollected *big.Int
	State           string
	Region          string
	Image           string
}

func ether(t *testing.T, s string) *big.Int {
	v, err := normalize.ParseEther(s)
	require.NoError(t, err)
	return v
}

func newRecord(owner common.Address, title string, target, collected *big.Int) record {
	return record{
		Owner:           owner,
		Title:           title,
		Description:     title + " description",
		Target:          target,
		Deadline:        big.NewInt(1893456000),
		AmountCollected: collected,
		State:           "Kerala",
		Region:          "South",
		Image:           "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
	}
}

type revertError struct{}

func (revertError) Error() string  { return "execution reverted" }
func (revertError) ErrorCode() int { return revertCode }

// fakeLedger executes the contract methods in memory. Calldata is decoded and results are
// encoded with the real ABI.
type fakeLedger struct {
	mu sync.Mutex

	campaigns     []record
	donors        map[int64][]common.Address
	contributions map[int64]map[common.Address]*big.Int
	receipts      map[common.Hash]*types.Receipt

	calls        int
	failMethod   map[string]error
	failCampaign map[int64]error
	emptyOutput  bool
	pendingPolls int
	neverConfirm bool
	failReceipts bool
	nonce        int64
}

func newFakeLedger(records ...record) *fakeLedger {
	return &fakeLedger{
		campaigns:     records,
		donors:        make(map[int64][]common.Address),
		contributions: make(map[int64]map[common.Address]*big.Int),
		receipts:      make(map[common.Hash]*types.Receipt),
		failMethod:    make(map[string]error),
		failCampaign:  make(map[int64]error),
	}
}

func (l *fakeLedger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *fakeLedger) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++

	method, err := ContractABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	if err := l.failMethod[method.Name]; err != nil {
		return nil, err
	}
	if l.emptyOutput {
		return []byte{}, nil
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case MethodAllCampaigns:
		return method.Outputs.Pack(l.all())
	case MethodCampaign:
		r := l.campaign(args[0].(*big.Int).Int64())
		return method.Outputs.Pack(r.Owner, r.Title, r.Description, r.Target, r.Deadline,
			r.AmountCollected, r.State, r.Region, r.Image)
	case MethodCampaignsByOwner:
		owned := []record{}
		for _, r := range l.campaigns {
			if r.Owner == args[0].(common.Address) {
				owned = append(owned, r)
			}
		}
		return method.Outputs.Pack(owned)
	case MethodDonors:
		id := args[0].(*big.Int).Int64()
		addrs := l.donors[id]
		amounts := make([]*big.Int, len(addrs))
		for i, a := range addrs {
			amounts[i] = l.contributions[id][a]
		}
		if addrs == nil {
			addrs = []common.Address{}
		}
		return method.Outputs.Pack(addrs, amounts)
	case MethodContribution:
		if err := l.failCampaign[args[0].(*big.Int).Int64()]; err != nil {
			return nil, err
		}
		amount := l.contributions[args[0].(*big.Int).Int64()][args[1].(common.Address)]
		if amount == nil {
			amount = new(big.Int)
		}
		return method.Outputs.Pack(amount)
	}
	return nil, errors.Errorf("unexpected view call %s", method.Name)
}

func (l *fakeLedger) all() []record {
	if l.campaigns == nil {
		return []record{}
	}
	return l.campaigns
}

func (l *fakeLedger) campaign(id int64) record {
	if id < 0 || id >= int64(len(l.campaigns)) {
		zero := new(big.Int)
		return record{Target: zero, Deadline: zero, AmountCollected: zero}
	}
	return l.campaigns[id]
}

// apply executes a state changing call and stores its receipt.
func (l *fakeLedger) apply(from common.Address, value *big.Int, data []byte) (common.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	method, err := ContractABI.MethodById(data[:4])
	if err != nil {
		return common.Hash{}, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Hash{}, err
	}
	if err := l.failMethod[method.Name]; err != nil {
		return common.Hash{}, err
	}

	status := types.ReceiptStatusSuccessful
	switch {
	case l.failReceipts:
		status = types.ReceiptStatusFailed
	case method.Name == MethodCreateCampaign:
		l.campaigns = append(l.campaigns, record{
			Owner:           from,
			Title:           args[0].(string),
			Description:     args[1].(string),
			Target:          args[2].(*big.Int),
			Deadline:        args[3].(*big.Int),
			AmountCollected: new(big.Int),
			State:           args[4].(string),
			Region:          args[5].(string),
			Image:           args[6].(string),
		})
	case method.Name == MethodContribute || method.Name == MethodDonateToCampaign:
		id := args[0].(*big.Int).Int64()
		if id >= int64(len(l.campaigns)) {
			return common.Hash{}, revertError{}
		}
		r := &l.campaigns[id]
		r.AmountCollected = new(big.Int).Add(r.AmountCollected, value)
		if l.contributions[id] == nil {
			l.contributions[id] = make(map[common.Address]*big.Int)
		}
		if l.contributions[id][from] == nil {
			l.contributions[id][from] = new(big.Int)
			l.donors[id] = append(l.donors[id], from)
		}
		l.contributions[id][from].Add(l.contributions[id][from], value)
	case method.Name == MethodWithdrawFunds:
		id := args[0].(*big.Int).Int64()
		r := l.campaign(id)
		if r.Owner != from || r.AmountCollected.Cmp(r.Target) < 0 {
			return common.Hash{}, revertError{}
		}
		l.campaigns[id].AmountCollected = new(big.Int)
	}

	l.nonce++
	hash := common.BigToHash(big.NewInt(l.nonce))
	l.receipts[hash] = &types.Receipt{
		Status:      status,
		TxHash:      hash,
		BlockNumber: big.NewInt(100 + l.nonce),
		GasUsed:     21000,
	}
	return hash, nil
}

func (l *fakeLedger) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.neverConfirm {
		return nil, ethereum.NotFound
	}
	if l.pendingPolls > 0 {
		l.pendingPolls--
		return nil, ethereum.NotFound
	}
	r, ok := l.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// fakeWallet approves everything unless told otherwise and counts user prompts.
type fakeWallet struct {
	mu      sync.Mutex
	ledger  *fakeLedger
	account common.Address
	reject  bool
	prompts int
	sends   int
}

func (w *fakeWallet) Accounts(context.Context) ([]common.Address, error) {
	return nil, nil
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prompts++
	if w.reject {
		return nil, failure.New(failure.CodeUserRejected, "user rejected the request")
	}
	return []common.Address{w.account}, nil
}

func (w *fakeWallet) RevokePermissions(context.Context) error {
	return nil
}

func (w *fakeWallet) SendTransaction(_ context.Context, from common.Address, tx wallet.TxRequest) (common.Hash, error) {
	w.mu.Lock()
	w.prompts++
	w.sends++
	w.mu.Unlock()
	hash, err := w.ledger.apply(from, tx.Value, tx.Data)
	if err != nil {
		return common.Hash{}, failure.Wrap(failure.CodeNetworkOrLedger, err, "wallet request failed")
	}
	return hash, nil
}

func (w *fakeWallet) counts() (prompts, sends int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prompts, w.sends
}

func newBridge(t *testing.T, l *fakeLedger, account common.Address) (*Bridge, *fakeWallet) {
	t.Helper()
	w := &fakeWallet{ledger: l, account: account}
	obs := observability.Make(configuration.Log{Level: "error"})
	images := normalize.NewImageResolver("https://gateway.test/ipfs/", "https://placeholder.test/300", time.Second)
	norm := normalize.New(images, normalize.DefaultDateLayout, time.UTC)
	b := New(Config{
		Address:      contractAddr,
		PollInterval: time.Millisecond,
		Concurrency:  2,
	}, l, w, session.New(w, obs.Log()), norm, obs)
	return b, w
}
