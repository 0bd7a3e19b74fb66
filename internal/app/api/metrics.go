// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// MetricsMiddleware counts requests and observes their latency per route.
func MetricsMiddleware(reg prometheus.Registerer, log logrus.FieldLogger) echo.MiddlewareFunc {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crowdfund_api_requests_total",
		Help: "Number of API requests by route and status",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crowdfund_api_request_duration_seconds",
		Help:    "API request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	for _, c := range []prometheus.Collector{requests, latency} {
		if err := reg.Register(c); err != nil {
			log.WithError(err).Error("failed to register metric")
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			started := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}
			route := ctx.Path()
			method := ctx.Request().Method
			requests.WithLabelValues(method, route, strconv.Itoa(ctx.Response().Status)).Inc()
			latency.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
			return nil
		}
	}
}
