// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package normalize

import (
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insolar/crowdfund/internal/failure"
)

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}

func TestFormatEther(t *testing.T) {
	cases := []struct {
		in  *big.Int
		out string
	}{
		{nil, "0.0"},
		{big.NewInt(0), "0.0"},
		{big.NewInt(1), "0.000000000000000001"},
		{wei("1000000000000000000"), "1.0"},
		{wei("1500000000000000000"), "1.5"},
		{wei("25000000000000000000"), "25.0"},
		{wei("123456789012345678901234"), "123456.789012345678901234"},
		{big.NewInt(-5e17), "-0.5"},
	}
	for _, c := range cases {
		t.Run(c.out, func(t *testing.T) {
			require.Equal(t, c.out, FormatEther(c.in))
		})
	}
}

func TestParseEther(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cases := map[string]string{
			"1":                     "1000000000000000000",
			"1.0":                   "1000000000000000000",
			" 0.5 ":                 "500000000000000000",
			".25":                   "250000000000000000",
			"2.":                    "2000000000000000000",
			"0":                     "0",
			"0.000000000000000001":  "1",
			"1.5000000000000000000": "1500000000000000000",
			"007.10":                "7100000000000000000",
		}
		for in, out := range cases {
			v, err := ParseEther(in)
			require.NoError(t, err, in)
			require.Equal(t, out, v.String(), in)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"", " ", ".", "-1", "+1", "1e18", "1,5", "abc", "1.2.3", "0.0000000000000000001"} {
			_, err := ParseEther(in)
			require.Error(t, err, in)
			require.True(t, failure.Is(err, failure.CodeInvalidInput), in)
		}
	})
}

func TestParsePositive(t *testing.T) {
	_, err := ParsePositive("0")
	require.True(t, failure.Is(err, failure.CodeInvalidInput))
	_, err = ParsePositive("0.000")
	require.True(t, failure.Is(err, failure.CodeInvalidInput))

	v, err := ParsePositive("0.01")
	require.NoError(t, err)
	require.Equal(t, "10000000000000000", v.String())
}

func TestParsePositive_Uint256Bound(t *testing.T) {
	limit := new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil)
	maxWei := new(big.Int).Sub(limit, big.NewInt(1))

	v, err := ParsePositive(FormatEther(maxWei))
	require.NoError(t, err)
	require.Equal(t, 0, v.Cmp(maxWei))

	_, err = ParsePositive(FormatEther(limit))
	require.True(t, failure.Is(err, failure.CodeInvalidInput))

	_, err = ParsePositive("1" + strings.Repeat("0", 70))
	require.True(t, failure.Is(err, failure.CodeInvalidInput))
}

func TestEther_RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	limit := new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil)

	samples := []*big.Int{
		big.NewInt(0), big.NewInt(1), big.NewInt(10), big.NewInt(999999999999999999),
		wei("1000000000000000000"), wei("1000000000000000001"), new(big.Int).Sub(limit, big.NewInt(1)),
	}
	for i := 0; i < 500; i++ {
		samples = append(samples, new(big.Int).Rand(rnd, limit))
	}

	for _, a := range samples {
		back, err := ParseEther(FormatEther(a))
		require.NoError(t, err, a.String())
		require.Equal(t, 0, a.Cmp(back), "%s -> %s -> %s", a, FormatEther(a), back)
	}
}
