// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package api

type CreateCampaignRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Decimal amount in whole units.
	Target string `json:"target"`
	// YYYY-MM-DD or RFC 3339.
	Deadline string `json:"deadline"`
	State    string `json:"state"`
	Region   string `json:"region"`
	// Content identifier returned by POST /api/images.
	Image string `json:"image"`
}

type ContributeRequest struct {
	Amount string `json:"amount"`
}

type ImageResponse struct {
	Image string `json:"image"`
	URL   string `json:"url"`
}

type SessionResponse struct {
	Connected bool   `json:"connected"`
	Account   string `json:"account,omitempty"`
}
