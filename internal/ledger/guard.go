// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package ledger

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/insolar/crowdfund/internal/failure"
)

// Guard refuses a write while the same write is still awaiting finalization.
type Guard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{pending: make(map[string]struct{})}
}

func guardKey(method string, campaign int64, account common.Address) string {
	return fmt.Sprintf("%s/%d/%s", method, campaign, account.Hex())
}

// Acquire marks the write as pending. The returned release must be called once the write
// is finalized or failed.
func (g *Guard) Acquire(method string, campaign int64, account common.Address) (func(), error) {
	key := guardKey(method, campaign, account)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.pending[key]; ok {
		return nil, failure.Newf(failure.CodeSubmissionInFlight, "%s is still being processed", method)
	}
	g.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, key)
			g.mu.Unlock()
		})
	}, nil
}
