// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package component

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/internal/app/api"
	"github.com/insolar/crowdfund/internal/normalize"
	"github.com/insolar/crowdfund/observability"
)

var errServerClosed = http.ErrServerClosed

func makeAPI(
	cfg *configuration.Configuration,
	obs *observability.Observability,
	ledger api.Ledger,
	uploader api.Uploader,
	session api.Session,
	images *normalize.ImageResolver,
) *echo.Echo {
	log := obs.Log()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(api.MetricsMiddleware(obs.Metrics(), log))

	server := api.NewCrowdfundServer(ledger, uploader, session, images, log.WithField("component", "api"))
	if cfg.Content.VerifyImages {
		server = server.WithImageVerification()
	}
	api.RegisterHandlers(e, server)
	return e
}
