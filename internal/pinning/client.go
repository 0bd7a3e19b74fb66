// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

// Package pinning uploads campaign images to a content pinning endpoint.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/models"
)

const (
	FormField = "file"
	// MaxImageSize bounds the upload kept in memory for retries.
	MaxImageSize = 20 << 20

	baseDelay = 200 * time.Millisecond
	maxDelay  = 5 * time.Second
)

type Client struct {
	endpoint string
	jwt      string
	http     *http.Client
	executor failsafe.Executor[*http.Response]
	log      logrus.FieldLogger
}

func New(cfg configuration.Pinning, log logrus.FieldLogger) *Client {
	return newClient(cfg, log, baseDelay)
}

func newClient(cfg configuration.Pinning, log logrus.FieldLogger, delay time.Duration) *Client {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(delay, maxDelay).
		WithMaxRetries(retries).
		WithJitterFactor(0.1).
		HandleIf(shouldRetry).
		Build()

	return &Client{
		endpoint: cfg.Endpoint,
		jwt:      cfg.JWT,
		http:     &http.Client{Timeout: cfg.Timeout},
		executor: failsafe.With(policy),
		log:      log,
	}
}

// shouldRetry retries network errors, server errors and rate limits.
func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	if resp == nil {
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
}

type pinResponse struct {
	// Pinata
	IpfsHash string `json:"IpfsHash"`
	// IPFS HTTP API
	Hash string `json:"Hash"`
}

func uploadFailed(err error, msg string) error {
	if err == nil {
		return failure.New(failure.CodeUploadFailed, msg)
	}
	return failure.Force(failure.CodeUploadFailed, err, msg)
}

// Upload stores the image and returns its content identifier.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if c.endpoint == "" {
		return "", uploadFailed(nil, "no pinning endpoint configured")
	}
	content, err := ioutil.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", uploadFailed(err, "failed to read the image")
	}
	if len(content) > MaxImageSize {
		return "", uploadFailed(nil, "image is too large")
	}
	if len(content) == 0 {
		return "", uploadFailed(nil, "image is empty")
	}

	body, contentType, err := multipartBody(filename, content)
	if err != nil {
		return "", uploadFailed(err, "failed to encode the image")
	}

	log := c.log.WithField("file", filename)
	attempt := 0
	resp, err := c.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		attempt++
		if attempt > 1 {
			log.WithField("attempt", attempt).Warn("retrying image upload")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		if c.jwt != "" {
			req.Header.Set("Authorization", "Bearer "+c.jwt)
		}
		resp, err := c.http.Do(req)
		if shouldRetry(resp, err) && resp != nil {
			_ = resp.Body.Close()
		}
		return resp, err
	})
	if err != nil {
		log.WithError(err).Error("image upload failed")
		return "", uploadFailed(err, "image upload failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).Error("pinning endpoint refused the image")
		return "", uploadFailed(errors.Errorf("unexpected status %d", resp.StatusCode), "image upload failed")
	}
	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", uploadFailed(err, "malformed pinning response")
	}
	cid := pinned.IpfsHash
	if cid == "" {
		cid = pinned.Hash
	}
	if cid == "" {
		return "", uploadFailed(nil, "pinning endpoint returned no identifier")
	}
	log.WithField("cid", cid).Info("image pinned")
	return cid, nil
}

func multipartBody(filename string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(FormField, filepath.Base(filename))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	meta, err := json.Marshal(map[string]string{"name": filepath.Base(filename)})
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// Attach uploads the image and stores its identifier in the form. The form is left as it
// was when the upload fails.
func (c *Client) Attach(ctx context.Context, f *models.CampaignFields, filename string, r io.Reader) error {
	cid, err := c.Upload(ctx, filename, r)
	if err != nil {
		return err
	}
	f.Image = cid
	return nil
}
