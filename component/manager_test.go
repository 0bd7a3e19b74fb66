// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package component

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/internal/failure"
)

func offlineConfig() *configuration.Configuration {
	cfg := configuration.Default()
	cfg.Log.Level = "error"
	cfg.Ledger.RPCURL = ""
	cfg.Ledger.Attempts = 1
	cfg.Ledger.AttemptInterval = time.Millisecond
	cfg.Wallet.URL = ""
	return cfg
}

func TestPrepare_InvalidContract(t *testing.T) {
	cfg := offlineConfig()
	cfg.Ledger.ContractAddress = "not-an-address"

	_, err := Prepare(context.Background(), cfg)
	require.Error(t, err)
}

func TestPrepare_WithoutProviders(t *testing.T) {
	ctx := context.Background()
	m, err := Prepare(ctx, offlineConfig())
	require.NoError(t, err)
	defer m.Stop()

	m.Init(ctx)

	_, err = m.Store().Campaigns(ctx)
	require.Equal(t, failure.CodeProviderUnavailable, failure.CodeOf(err))

	_, err = m.Session().Connect(ctx)
	require.Equal(t, failure.CodeProviderUnavailable, failure.CodeOf(err))

	_, ok := m.Session().Account()
	require.False(t, ok)
}

func TestRouter(t *testing.T) {
	m, err := Prepare(context.Background(), offlineConfig())
	require.NoError(t, err)
	defer m.Stop()

	rec := httptest.NewRecorder()
	m.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	m.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "crowdfund_session_connected 0")
}
