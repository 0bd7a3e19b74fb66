// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package component

import (
	"context"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/session"
	"github.com/insolar/crowdfund/observability"
)

// makeInitter restores a previously granted wallet account. A missing wallet is not fatal:
// read operations keep working and writes report the provider as unavailable.
func makeInitter(obs *observability.Observability, sess *session.Controller, metrics *observability.SessionMetrics) func(context.Context) {
	log := obs.Log()
	return func(ctx context.Context) {
		if err := sess.Init(ctx); err != nil {
			if failure.CodeOf(err).Blocking() {
				log.Warn(err)
			} else {
				log.Error(err)
			}
		}
		observeSession(sess, metrics)
		account, ok := sess.Account()
		log.Debugf("Session restored: connected=%v account=%s", ok, account.Hex())
	}
}

func observeSession(sess session.Viewer, metrics *observability.SessionMetrics) {
	if _, ok := sess.Account(); ok {
		metrics.Connected.Set(1)
		return
	}
	metrics.Connected.Set(0)
}
