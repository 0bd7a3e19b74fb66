// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package normalize

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultGateway     = "https://ipfs.io/ipfs/"
	DefaultPlaceholder = "https://via.placeholder.com/300"

	ipfsScheme = "ipfs://"
)

// ImageResolver turns the image field stored on-ledger into a fetchable URL.
type ImageResolver struct {
	Gateway     string
	Placeholder string
	Client      *http.Client
}

func NewImageResolver(gateway, placeholder string, timeout time.Duration) *ImageResolver {
	if gateway == "" {
		gateway = DefaultGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &ImageResolver{
		Gateway:     gateway,
		Placeholder: placeholder,
		Client:      &http.Client{Timeout: timeout},
	}
}

// IsContentID reports whether ref looks like a bare content identifier.
func IsContentID(ref string) bool {
	return strings.HasPrefix(ref, "Qm") || strings.HasPrefix(ref, "bafy")
}

// Resolve never fails: anything it cannot make sense of becomes the placeholder.
func (r *ImageResolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return r.Placeholder
	case strings.HasPrefix(ref, ipfsScheme):
		cid := strings.TrimPrefix(ref, ipfsScheme)
		cid = strings.TrimPrefix(cid, "ipfs/")
		cid = strings.TrimLeft(cid, "/")
		if cid == "" {
			return r.Placeholder
		}
		return r.Gateway + cid
	case IsContentID(ref):
		return r.Gateway + ref
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return r.Placeholder
	}
	return ref
}

// Verify checks that the resolved URL is retrievable and substitutes the placeholder when
// it is not. It never returns an error.
func (r *ImageResolver) Verify(ctx context.Context, resolved string) string {
	if resolved == "" || resolved == r.Placeholder {
		return r.Placeholder
	}
	status, err := r.probe(ctx, http.MethodHead, resolved)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = r.probe(ctx, http.MethodGet, resolved)
	}
	if err != nil || status >= http.StatusBadRequest {
		return r.Placeholder
	}
	return resolved
}

func (r *ImageResolver) probe(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
