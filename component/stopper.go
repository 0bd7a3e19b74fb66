// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package component

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/insolar/crowdfund/connectivity"
	"github.com/insolar/crowdfund/observability"
)

const shutdownTimeout = 10 * time.Second

func makeStopper(obs *observability.Observability, conn *connectivity.Connectivity, router *Router, api *echo.Echo) func() {
	log := obs.Log()
	return func() {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := api.Shutdown(ctx); err != nil {
				log.Error(errors.Wrapf(err, "api server shutdown"))
			}
		}()

		go func() {
			defer wg.Done()
			router.Stop()
		}()
		wg.Wait()

		conn.Close()
	}
}
