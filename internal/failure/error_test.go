// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package failure

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.NoError(t, Wrap(CodeUploadFailed, nil, "upload"))
	})

	t.Run("raw error gets code", func(t *testing.T) {
		err := Wrap(CodeUploadFailed, errors.New("connection refused"), "upload failed")
		require.Equal(t, CodeUploadFailed, CodeOf(err))
		require.Equal(t, "upload failed", MessageOf(err))
	})

	t.Run("existing code survives outer wrap", func(t *testing.T) {
		inner := New(CodeUserRejected, "declined")
		err := Wrap(CodeNetworkOrLedger, errors.Wrap(inner, "send"), "write failed")
		require.Equal(t, CodeUserRejected, CodeOf(err))
	})

	t.Run("force overrides", func(t *testing.T) {
		inner := New(CodeNetworkOrLedger, "reverted")
		err := Force(CodeWithdrawalRejected, inner, "ledger refused")
		require.Equal(t, CodeWithdrawalRejected, CodeOf(err))
	})
}

func TestCodeOf_Default(t *testing.T) {
	require.Equal(t, CodeNetworkOrLedger, CodeOf(errors.New("boom")))
	require.Equal(t, Code(""), CodeOf(nil))
	require.False(t, Is(nil, CodeNetworkOrLedger))
}

func TestCode_HTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeProviderUnavailable: http.StatusServiceUnavailable,
		CodeInvalidInput:        http.StatusBadRequest,
		CodeCampaignNotFound:    http.StatusNotFound,
		CodeTargetNotReached:    http.StatusConflict,
		CodeNetworkOrLedger:     http.StatusBadGateway,
		Code("SOMETHING_ELSE"):  http.StatusInternalServerError,
	}
	for code, status := range cases {
		t.Run(string(code), func(t *testing.T) {
			require.Equal(t, status, code.HTTPStatus())
		})
	}
	require.True(t, CodeProviderUnavailable.Blocking())
	require.True(t, CodeUserRejected.Recoverable())
}
