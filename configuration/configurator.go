// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package configuration

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	ConfigName     = "crowdfund"
	ConfigType     = "yaml"
	ConfigFilePath = ConfigName + "." + ConfigType
	EnvPrefix      = "crowdfund"

	masked = "<masked>"
)

func Load(log logrus.FieldLogger) *Configuration {
	printWorkingDir(log)
	actual := load(log, ".", ".artifacts")
	printConfig(log, actual)
	return actual
}

func load(log logrus.FieldLogger, paths ...string) *Configuration {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.SetConfigType(ConfigType)

	// Defaults are read as a config document so that every key is known to viper and
	// can be overridden from the environment.
	defaults, err := yaml.Marshal(Default())
	if err != nil {
		log.Error(errors.Wrap(err, "failed to marshal default config structure"))
		return Default()
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		log.Error(errors.Wrap(err, "failed to read default config structure"))
		return Default()
	}

	v.SetConfigName(ConfigName)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warnf("config file not found (file=%v). Default configuration is used", ConfigFilePath)
		} else {
			log.Error(errors.Wrapf(err, "failed to load config. Default configuration is used"))
			return Default()
		}
	}

	actual := &Configuration{}
	if err := v.Unmarshal(actual); err != nil {
		log.Error(errors.Wrapf(err, "failed to unmarshal config into configuration structure. Default configuration is used"))
		return Default()
	}
	return actual
}

func printWorkingDir(log logrus.FieldLogger) {
	wd, _ := os.Getwd()
	log.Infof("Working dir: %s", wd)
}

func printConfig(log logrus.FieldLogger, c *Configuration) {
	out, err := yaml.Marshal(cleanSecrets(c))
	if err != nil {
		log.Error(errors.Wrapf(err, "failed to marshal config structure"))
		return
	}
	log.Infof("Loaded configuration: \n %s \n", string(out))
}

func cleanSecrets(c *Configuration) *Configuration {
	cc := *c
	cc.Ledger.RPCURL = replacePassword(cc.Ledger.RPCURL)
	cc.Wallet.URL = replacePassword(cc.Wallet.URL)
	cc.Pinning.Endpoint = replacePassword(cc.Pinning.Endpoint)
	if cc.Wallet.Passphrase != "" {
		cc.Wallet.Passphrase = masked
	}
	if cc.Pinning.JWT != "" {
		cc.Pinning.JWT = masked
	}
	return &cc
}

// MaskURL hides a password embedded in url.
func MaskURL(url string) string {
	return replacePassword(url)
}

func replacePassword(url string) string {
	re := regexp.MustCompile(`^(?P<start>.*)(:(?P<pass>[^@\/:?]+)@)(?P<end>.*)$`)
	result := []byte{}
	if re.MatchString(url) {
		for _, submatches := range re.FindAllStringSubmatchIndex(url, -1) {
			result = re.ExpandString(result, `$start:`+masked+`@$end`, url, submatches)
		}
		return string(result)
	}
	return url
}
