// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// JSON-RPC error code geth uses for execution reverts.
const revertCode = 3

var (
	// errReverted marks a call the contract itself refused.
	errReverted = errors.New("execution reverted")
	// errNoOutput is an empty eth_call result, which geth returns when no contract lives
	// at the address.
	errNoOutput = errors.New("ledger returned no data")
)

func isRevert(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errNoOutput) {
		return false
	}
	if errors.Is(err, errReverted) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertCode {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "revert")
}

// revertReason extracts the Error(string) reason a node attaches to a revert, if any.
func revertReason(err error) string {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return ""
	}
	s, ok := dataErr.ErrorData().(string)
	if !ok {
		return ""
	}
	data, decodeErr := hexutil.Decode(s)
	if decodeErr != nil {
		return ""
	}
	reason, unpackErr := abi.UnpackRevert(data)
	if unpackErr != nil {
		return ""
	}
	return reason
}

// rejected wraps err so that isRevert keeps recognizing it after classification.
func rejected(err error) error {
	if reason := revertReason(err); reason != "" {
		return errors.Wrap(errReverted, reason)
	}
	return errors.WithMessage(errReverted, err.Error())
}
