// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package configuration

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func Test_replacePassword(t *testing.T) {
	const password = "super_secret_password"
	const with = "https://rpc:" + password + "@node.example.com:8545"
	const without = "http://127.0.0.1:8545"

	t.Run("replaced", func(t *testing.T) {
		require.Contains(t, with, password)
		require.NotContains(t, replacePassword(with), password)
	})

	t.Run("not_replaced", func(t *testing.T) {
		require.NotContains(t, without, password)
		require.Equal(t, without, replacePassword(without))
	})
}

func Test_cleanSecrets(t *testing.T) {
	cfg := Default()
	cfg.Pinning.JWT = "eyJhbGciOi"
	cfg.Wallet.Passphrase = "hunter2"

	cc := cleanSecrets(cfg)
	require.Equal(t, masked, cc.Pinning.JWT)
	require.Equal(t, masked, cc.Wallet.Passphrase)
	require.Equal(t, "eyJhbGciOi", cfg.Pinning.JWT, "original must stay intact")
}

func Test_load(t *testing.T) {
	log := logrus.New()

	t.Run("no file", func(t *testing.T) {
		cfg := load(log, t.TempDir())
		require.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte("ledger:\n  contributemethod: donateToCampaign\n  pollinterval: 500ms\ncache:\n  size: 7\n")
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, ConfigFilePath), content, 0600))

		cfg := load(log, dir)
		require.Equal(t, "donateToCampaign", cfg.Ledger.ContributeMethod)
		require.Equal(t, 500*time.Millisecond, cfg.Ledger.PollInterval)
		require.Equal(t, 7, cfg.Cache.Size)
		require.Equal(t, Default().API, cfg.API)
	})

	t.Run("env overrides defaults", func(t *testing.T) {
		require.NoError(t, os.Setenv("CROWDFUND_PINNING_JWT", "from-env"))
		defer os.Unsetenv("CROWDFUND_PINNING_JWT")

		cfg := load(log, t.TempDir())
		require.Equal(t, "from-env", cfg.Pinning.JWT)
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	require.NoError(t, ioutil.WriteFile(".env", []byte("CROWDFUND_TEST_FROM_FILE=file\nCROWDFUND_TEST_PRESET=file\n"), 0600))
	t.Setenv("CROWDFUND_TEST_PRESET", "env")
	defer os.Unsetenv("CROWDFUND_TEST_FROM_FILE")

	LoadEnv(logrus.New())

	require.Equal(t, "file", os.Getenv("CROWDFUND_TEST_FROM_FILE"))
	require.Equal(t, "env", os.Getenv("CROWDFUND_TEST_PRESET"))
}
