// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package wallet

import (
	"context"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/insolar/crowdfund/internal/failure"
)

type providerError struct {
	code int
	msg  string
}

func (e providerError) Error() string  { return e.msg }
func (e providerError) ErrorCode() int { return e.code }

// fakeProvider mimics an injected wallet: accounts become visible only after a grant.
type fakeProvider struct {
	mu        sync.Mutex
	selection []common.Address
	granted   []common.Address
	decline   bool
	requests  int
	revokes   int
	sent      []sendTxArgs
	sendErr   error
}

type ethService struct{ p *fakeProvider }

func (s *ethService) Accounts() []common.Address {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	if s.p.granted == nil {
		return []common.Address{}
	}
	return s.p.granted
}

func (s *ethService) SendTransaction(args sendTxArgs) (common.Hash, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	if s.p.sendErr != nil {
		return common.Hash{}, s.p.sendErr
	}
	s.p.sent = append(s.p.sent, args)
	return common.HexToHash("0xfeed"), nil
}

type walletService struct{ p *fakeProvider }

func (s *walletService) RequestPermissions(perms map[string]struct{}) ([]map[string]string, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.requests++
	if s.p.decline {
		return nil, providerError{code: 4001, msg: "User rejected the request."}
	}
	if _, ok := perms["eth_accounts"]; !ok {
		return nil, providerError{code: -32602, msg: "missing eth_accounts"}
	}
	s.p.granted = s.p.selection
	return []map[string]string{{"parentCapability": "eth_accounts"}}, nil
}

func (s *walletService) RevokePermissions(map[string]struct{}) (interface{}, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.revokes++
	s.p.granted = nil
	return nil, nil
}

func newRPCWallet(t *testing.T, p *fakeProvider) *RPC {
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", &ethService{p: p}))
	require.NoError(t, server.RegisterName("wallet", &walletService{p: p}))
	client := rpc.DialInProc(server)
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})
	return NewRPC(client, logrus.New())
}

func TestRPC_RequestAccounts(t *testing.T) {
	ctx := context.Background()
	picked := common.HexToAddress("0xABC0000000000000000000000000000000001234")
	p := &fakeProvider{selection: []common.Address{picked}}
	w := newRPCWallet(t, p)

	before, err := w.Accounts(ctx)
	require.NoError(t, err)
	require.Empty(t, before)

	accounts, err := w.RequestAccounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []common.Address{picked}, accounts)
	require.Equal(t, 1, p.requests)

	// A second request prompts again instead of reusing the grant.
	_, err = w.RequestAccounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, p.requests)
}

func TestRPC_RequestAccounts_Declined(t *testing.T) {
	w := newRPCWallet(t, &fakeProvider{decline: true})
	_, err := w.RequestAccounts(context.Background())
	require.Error(t, err)
	require.Equal(t, failure.CodeUserRejected, failure.CodeOf(err))
}

func TestRPC_RequestAccounts_EmptyGrant(t *testing.T) {
	w := newRPCWallet(t, &fakeProvider{})
	_, err := w.RequestAccounts(context.Background())
	require.Equal(t, failure.CodeNoAccountGranted, failure.CodeOf(err))
}

func TestRPC_Revoke(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{selection: []common.Address{common.HexToAddress("0x01")}}
	w := newRPCWallet(t, p)

	_, err := w.RequestAccounts(ctx)
	require.NoError(t, err)
	require.NoError(t, w.RevokePermissions(ctx))
	require.Equal(t, 1, p.revokes)

	accounts, err := w.Accounts(ctx)
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestRPC_SendTransaction(t *testing.T) {
	ctx := context.Background()
	from := common.HexToAddress("0x01")
	to := common.HexToAddress("0x02")

	t.Run("encodes value and data", func(t *testing.T) {
		p := &fakeProvider{}
		w := newRPCWallet(t, p)
		hash, err := w.SendTransaction(ctx, from, TxRequest{To: to, Value: bigInt(5), Data: []byte{0xca, 0xfe}})
		require.NoError(t, err)
		require.Equal(t, common.HexToHash("0xfeed"), hash)
		require.Len(t, p.sent, 1)
		require.Equal(t, from, p.sent[0].From)
		require.Equal(t, to, *p.sent[0].To)
		require.Equal(t, int64(5), p.sent[0].Value.ToInt().Int64())
		require.Equal(t, []byte{0xca, 0xfe}, []byte(p.sent[0].Data))
		require.Nil(t, p.sent[0].Gas)
	})

	t.Run("user declines", func(t *testing.T) {
		w := newRPCWallet(t, &fakeProvider{sendErr: providerError{code: 4001, msg: "User denied transaction signature."}})
		_, err := w.SendTransaction(ctx, from, TxRequest{To: to})
		require.Equal(t, failure.CodeUserRejected, failure.CodeOf(err))
	})

	t.Run("revert keeps provider error", func(t *testing.T) {
		w := newRPCWallet(t, &fakeProvider{sendErr: providerError{code: 3, msg: "execution reverted: target not reached"}})
		_, err := w.SendTransaction(ctx, from, TxRequest{To: to})
		require.Equal(t, failure.CodeNetworkOrLedger, failure.CodeOf(err))
		require.Contains(t, err.Error(), "execution reverted")
	})

	t.Run("dismissed prompt", func(t *testing.T) {
		w := newRPCWallet(t, &fakeProvider{})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := w.SendTransaction(cctx, from, TxRequest{To: to})
		require.Equal(t, failure.CodeUserRejected, failure.CodeOf(err))
	})
}

func TestRPC_Unreachable(t *testing.T) {
	client, err := rpc.Dial("http://127.0.0.1:1")
	require.NoError(t, err)
	defer client.Close()

	w := NewRPC(client, logrus.New())
	_, err = w.Accounts(context.Background())
	require.Equal(t, failure.CodeProviderUnavailable, failure.CodeOf(err))
}
