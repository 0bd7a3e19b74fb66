// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package ledger

import (
	_ "embed"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract method names. They are a fixed external interface.
const (
	MethodCampaign         = "campaigns"
	MethodAllCampaigns     = "getAllCampaigns"
	MethodCampaignsByOwner = "getCampaignsByOwner"
	MethodDonors           = "getDonors"
	MethodContribution     = "getContribution"
	MethodCreateCampaign   = "createCampaign"
	MethodContribute       = "contribute"
	MethodDonateToCampaign = "donateToCampaign"
	MethodWithdrawFunds    = "withdrawFunds"
)

//go:embed crowdfunding.abi.json
var contractJSON string

// ContractABI is the parsed interface of the crowdfunding contract.
var ContractABI = mustParse(contractJSON)

func mustParse(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
