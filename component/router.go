// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package component

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/internal/ledger"
	"github.com/insolar/crowdfund/internal/session"
	"github.com/insolar/crowdfund/observability"
)

type ledgerSource interface {
	Ledger() ledger.Backend
}

func NewRouter(
	cfg *configuration.Configuration,
	obs *observability.Observability,
	conn ledgerSource,
	sess session.Viewer,
	metrics *observability.SessionMetrics,
) *Router {
	router := httprouter.New()
	hs := &http.Server{Addr: cfg.Router.Listen, Handler: router}
	r := &Router{
		hs:             hs,
		obs:            obs,
		conn:           conn,
		sess:           sess,
		sessionMetrics: metrics,
	}
	router.GET("/healthcheck", r.healthCheck)
	router.GET("/metrics", r.metrics)
	return r
}

type Router struct {
	hs             *http.Server
	obs            *observability.Observability
	conn           ledgerSource
	sess           session.Viewer
	sessionMetrics *observability.SessionMetrics
}

func (r *Router) Start() {
	log := r.obs.Log()
	go func() {
		err := r.hs.ListenAndServe()
		if err != http.ErrServerClosed {
			log.Error(errors.Wrapf(err, "http server ListenAndServe"))
		}
	}()
}

func (r *Router) Stop() {
	log := r.obs.Log()

	if err := r.hs.Shutdown(context.Background()); err != nil {
		log.Error(errors.Wrapf(err, "http server shutdown"))
	}
}

func (r *Router) healthCheck(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain")
	if r.conn.Ledger() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprint(w, "ledger unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (r *Router) metrics(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	observeSession(r.sess, r.sessionMetrics)
	ops := promhttp.HandlerOpts{
		ErrorLog: r.obs.Log(),
	}
	handler := promhttp.HandlerFor(r.obs.Metrics(), ops)
	handler.ServeHTTP(w, req)
}

// ServeHTTP lets tests drive the router without a listener.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hs.Handler.ServeHTTP(w, req)
}
