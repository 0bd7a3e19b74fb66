// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package pinning

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/models"
)

const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func newTestClient(endpoint string) *Client {
	cfg := configuration.Pinning{
		Endpoint:   endpoint,
		JWT:        "test-jwt",
		Timeout:    time.Second,
		MaxRetries: 2,
	}
	return newClient(cfg, logrus.New(), time.Millisecond)
}

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-jwt", r.Header.Get("Authorization"))

		file, header, err := r.FormFile(FormField)
		require.NoError(t, err)
		defer file.Close()
		content, err := ioutil.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "cover.png", header.Filename)
		require.Equal(t, "png-bytes", string(content))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IpfsHash":"` + testCID + `","PinSize":9}`))
	}))
	defer srv.Close()

	cid, err := newTestClient(srv.URL).Upload(context.Background(), "/tmp/cover.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, testCID, cid)
}

func TestClient_Upload_IPFSResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Name":"cover.png","Hash":"` + testCID + `","Size":"17"}`))
	}))
	defer srv.Close()

	cid, err := newTestClient(srv.URL).Upload(context.Background(), "cover.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.Equal(t, testCID, cid)
}

func TestClient_Upload_Retries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"IpfsHash":"` + testCID + `"}`))
	}))
	defer srv.Close()

	cid, err := newTestClient(srv.URL).Upload(context.Background(), "cover.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.Equal(t, testCID, cid)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Upload_Failures(t *testing.T) {
	table := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server errors exhaust retries", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"no identifier", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}},
		{"garbage", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL).Upload(context.Background(), "cover.png", strings.NewReader("png"))
			require.True(t, failure.Is(err, failure.CodeUploadFailed), "got %v", err)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newTestClient(url).Upload(context.Background(), "cover.png", strings.NewReader("png"))
		require.True(t, failure.Is(err, failure.CodeUploadFailed))
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:1").Upload(context.Background(), "cover.png", strings.NewReader(""))
		require.True(t, failure.Is(err, failure.CodeUploadFailed))
	})
}

func TestClient_Attach(t *testing.T) {
	t.Run("success sets the image", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"IpfsHash":"` + testCID + `"}`))
		}))
		defer srv.Close()

		f := models.CampaignFields{Title: "t"}
		require.NoError(t, newTestClient(srv.URL).Attach(context.Background(), &f, "a.png", strings.NewReader("png")))
		require.Equal(t, testCID, f.Image)
	})

	t.Run("failure leaves the form untouched", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		f := models.CampaignFields{Title: "t", Image: "https://example.com/old.png"}
		err := newTestClient(srv.URL).Attach(context.Background(), &f, "a.png", strings.NewReader("png"))
		require.True(t, failure.Is(err, failure.CodeUploadFailed))
		require.Equal(t, "https://example.com/old.png", f.Image)
	})
}
