// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package configuration

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var envFiles = []string{".env", ".artifacts/.env"}

// LoadEnv exports the variables of the .env files that exist. Variables already set in
// the environment win.
func LoadEnv(log logrus.FieldLogger) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.WithError(err).Warnf("failed to load %s", file)
			continue
		}
		log.Debugf("loaded environment from %s", file)
	}
}
