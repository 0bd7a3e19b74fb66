// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/component"
	"github.com/insolar/crowdfund/configuration"
)

var stop = make(chan os.Signal, 1)

func main() {
	logger := logrus.StandardLogger()
	configuration.LoadEnv(logger)
	cfg := configuration.Load(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager, err := component.Prepare(ctx, cfg)
	if err != nil {
		logger.Fatal(err)
	}
	manager.Start(ctx)
	graceful(manager.Log(), manager.Stop)
}

func graceful(logger logrus.FieldLogger, that func()) {
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Infof("gracefully stopping...")
	that()
}
