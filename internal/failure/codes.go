// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

// Package failure holds the error taxonomy shared by the bridge and its callers.
package failure

import "net/http"

// Code is a machine-readable error kind.
type Code string

const (
	// CodeProviderUnavailable means no wallet/ledger provider could be reached.
	CodeProviderUnavailable Code = "PROVIDER_UNAVAILABLE"
	// CodeNoAccountGranted means the wallet holds no account the user allowed us to use.
	CodeNoAccountGranted Code = "NO_ACCOUNT_GRANTED"
	// CodeUserRejected means the user declined an interactive wallet prompt.
	CodeUserRejected Code = "USER_REJECTED"
	// CodeInvalidInput is a client-side validation failure; nothing was sent.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeCampaignNotFound means the ledger returned an empty record.
	CodeCampaignNotFound Code = "CAMPAIGN_NOT_FOUND"
	// CodeTargetNotReached is the client-side withdrawal guard.
	CodeTargetNotReached Code = "TARGET_NOT_REACHED"
	// CodeWithdrawalRejected is the ledger's own refusal of a withdrawal.
	CodeWithdrawalRejected Code = "WITHDRAWAL_REJECTED"
	// CodeUploadFailed means the pinning endpoint did not return an identifier.
	CodeUploadFailed Code = "UPLOAD_FAILED"
	// CodeSubmissionInFlight means the same write is still awaiting finalization.
	CodeSubmissionInFlight Code = "SUBMISSION_IN_FLIGHT"
	// CodeNetworkOrLedger is the catch-all for RPC failures and malformed responses.
	CodeNetworkOrLedger Code = "NETWORK_OR_LEDGER"
)

// HTTPStatus maps codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeProviderUnavailable:
		return http.StatusServiceUnavailable
	case CodeNoAccountGranted:
		return http.StatusUnauthorized
	case CodeUserRejected:
		return http.StatusForbidden
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeCampaignNotFound:
		return http.StatusNotFound
	case CodeTargetNotReached, CodeWithdrawalRejected, CodeSubmissionInFlight:
		return http.StatusConflict
	case CodeUploadFailed, CodeNetworkOrLedger:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Blocking reports whether nothing can work until the user fixes the environment
// (install or unlock a wallet).
func (c Code) Blocking() bool {
	return c == CodeProviderUnavailable
}

// Recoverable reports whether the view can return to its pre-action state and let the
// user retry.
func (c Code) Recoverable() bool {
	return !c.Blocking()
}
