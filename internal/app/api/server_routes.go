// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package api

import (
	"fmt"
	"net/http"

	"github.com/deepmap/oapi-codegen/pkg/runtime"
	"github.com/labstack/echo/v4"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /api/campaigns)
	ListCampaigns(ctx echo.Context) error
	// (POST /api/campaigns)
	CreateCampaign(ctx echo.Context) error
	// (GET /api/campaigns/{id})
	GetCampaign(ctx echo.Context, id int64) error
	// (GET /api/campaigns/{id}/donors)
	ListDonors(ctx echo.Context, id int64) error
	// (POST /api/campaigns/{id}/contributions)
	Contribute(ctx echo.Context, id int64) error
	// (GET /api/campaigns/{id}/contributions/{address})
	GetContribution(ctx echo.Context, id int64, address string) error
	// (POST /api/campaigns/{id}/withdrawal)
	Withdraw(ctx echo.Context, id int64) error
	// (GET /api/owners/{address}/campaigns)
	ListOwnerCampaigns(ctx echo.Context, address string) error
	// (GET /api/donors/{address}/campaigns)
	ListDonatedCampaigns(ctx echo.Context, address string) error
	// (POST /api/images)
	UploadImage(ctx echo.Context) error
	// (GET /api/session)
	GetSession(ctx echo.Context) error
	// (POST /api/session)
	Connect(ctx echo.Context) error
	// (DELETE /api/session)
	Disconnect(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindID(ctx echo.Context) (int64, error) {
	var id int64
	err := runtime.BindStyledParameter("simple", false, "id", ctx.Param("id"), &id)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return id, nil
}

func bindAddress(ctx echo.Context) (string, error) {
	var address string
	err := runtime.BindStyledParameter("simple", false, "address", ctx.Param("address"), &address)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter address: %s", err))
	}
	return address, nil
}

// ListCampaigns converts echo context to params.
func (w *ServerInterfaceWrapper) ListCampaigns(ctx echo.Context) error {
	// Invoke the callback with all the unmarshalled arguments
	return w.Handler.ListCampaigns(ctx)
}

// CreateCampaign converts echo context to params.
func (w *ServerInterfaceWrapper) CreateCampaign(ctx echo.Context) error {
	return w.Handler.CreateCampaign(ctx)
}

// GetCampaign converts echo context to params.
func (w *ServerInterfaceWrapper) GetCampaign(ctx echo.Context) error {
	// ------------- Path parameter "id" -------------
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetCampaign(ctx, id)
}

// ListDonors converts echo context to params.
func (w *ServerInterfaceWrapper) ListDonors(ctx echo.Context) error {
	// ------------- Path parameter "id" -------------
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ListDonors(ctx, id)
}

// Contribute converts echo context to params.
func (w *ServerInterfaceWrapper) Contribute(ctx echo.Context) error {
	// ------------- Path parameter "id" -------------
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.Contribute(ctx, id)
}

// GetContribution converts echo context to params.
func (w *ServerInterfaceWrapper) GetContribution(ctx echo.Context) error {
	// ------------- Path parameter "id" -------------
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	// ------------- Path parameter "address" -------------
	address, err := bindAddress(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetContribution(ctx, id, address)
}

// Withdraw converts echo context to params.
func (w *ServerInterfaceWrapper) Withdraw(ctx echo.Context) error {
	// ------------- Path parameter "id" -------------
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.Withdraw(ctx, id)
}

// ListOwnerCampaigns converts echo context to params.
func (w *ServerInterfaceWrapper) ListOwnerCampaigns(ctx echo.Context) error {
	// ------------- Path parameter "address" -------------
	address, err := bindAddress(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ListOwnerCampaigns(ctx, address)
}

// ListDonatedCampaigns converts echo context to params.
func (w *ServerInterfaceWrapper) ListDonatedCampaigns(ctx echo.Context) error {
	// ------------- Path parameter "address" -------------
	address, err := bindAddress(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ListDonatedCampaigns(ctx, address)
}

// UploadImage converts echo context to params.
func (w *ServerInterfaceWrapper) UploadImage(ctx echo.Context) error {
	return w.Handler.UploadImage(ctx)
}

// GetSession converts echo context to params.
func (w *ServerInterfaceWrapper) GetSession(ctx echo.Context) error {
	return w.Handler.GetSession(ctx)
}

// Connect converts echo context to params.
func (w *ServerInterfaceWrapper) Connect(ctx echo.Context) error {
	return w.Handler.Connect(ctx)
}

// Disconnect converts echo context to params.
func (w *ServerInterfaceWrapper) Disconnect(ctx echo.Context) error {
	return w.Handler.Disconnect(ctx)
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router runtime.EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.GET("/api/campaigns", wrapper.ListCampaigns)
	router.POST("/api/campaigns", wrapper.CreateCampaign)
	router.GET("/api/campaigns/:id", wrapper.GetCampaign)
	router.GET("/api/campaigns/:id/donors", wrapper.ListDonors)
	router.POST("/api/campaigns/:id/contributions", wrapper.Contribute)
	router.GET("/api/campaigns/:id/contributions/:address", wrapper.GetContribution)
	router.POST("/api/campaigns/:id/withdrawal", wrapper.Withdraw)
	router.GET("/api/owners/:address/campaigns", wrapper.ListOwnerCampaigns)
	router.GET("/api/donors/:address/campaigns", wrapper.ListDonatedCampaigns)
	router.POST("/api/images", wrapper.UploadImage)
	router.GET("/api/session", wrapper.GetSession)
	router.POST("/api/session", wrapper.Connect)
	router.DELETE("/api/session", wrapper.Disconnect)
}
