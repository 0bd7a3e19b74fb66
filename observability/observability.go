// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package observability

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/configuration"
)

func Make(cfg configuration.Log) *Observability {
	return &Observability{
		log:        makeLogger(cfg),
		metrics:    prometheus.NewRegistry(),
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

func makeLogger(cfg configuration.Log) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		log.WithField("level", cfg.Level).Warn("unknown log level, info is used")
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

type Observability struct {
	log     *logrus.Logger
	metrics *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

func (o *Observability) Log() *logrus.Logger {
	return o.log
}

func (o *Observability) Metrics() *prometheus.Registry {
	return o.metrics
}

func (o *Observability) Counter(opts prometheus.CounterOpts) prometheus.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.counters[opts.Name]
	if ok {
		return c
	}
	c = prometheus.NewCounter(opts)
	err := o.metrics.Register(c)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return c
	}
	o.counters[opts.Name] = c
	return c
}

func (o *Observability) Gauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	o.mu.Lock()
	defer o.mu.Unlock()
	g, ok := o.gauges[opts.Name]
	if ok {
		return g
	}
	g = prometheus.NewGauge(opts)
	err := o.metrics.Register(g)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return g
	}
	o.gauges[opts.Name] = g
	return g
}

func (o *Observability) Histogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.histograms[opts.Name]
	if ok {
		return h
	}
	h = prometheus.NewHistogram(opts)
	err := o.metrics.Register(h)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return h
	}
	o.histograms[opts.Name] = h
	return h
}

// MakeLedgerMetrics builds one counter per LedgerMetrics field, named crowdfund_ledger_<field>_total.
func MakeLedgerMetrics(obs *Observability) *LedgerMetrics {
	counters := &LedgerMetrics{}
	v := reflect.ValueOf(counters).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Type != reflect.TypeOf((*prometheus.Counter)(nil)).Elem() {
			continue
		}
		field := strings.ToLower(t.Field(i).Name)
		name := fmt.Sprintf("crowdfund_ledger_%s_total", field)
		help := fmt.Sprintf("Number of ledger %s.", field)
		opts := prometheus.CounterOpts{
			Name: name,
			Help: help,
		}
		collector := obs.Counter(opts)
		v.Field(i).Set(reflect.ValueOf(collector))
	}
	counters.ConfirmationTime = obs.Histogram(prometheus.HistogramOpts{
		Name:    "crowdfund_ledger_confirmation_seconds",
		Help:    "Seconds between submission and finalization of a transaction",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})
	return counters
}

type LedgerMetrics struct {
	Reads         prometheus.Counter
	Writes        prometheus.Counter
	Confirmations prometheus.Counter
	Rejections    prometheus.Counter
	Failures      prometheus.Counter

	ConfirmationTime prometheus.Histogram
}

type SessionMetrics struct {
	Connected prometheus.Gauge
}

func MakeSessionMetrics(obs *Observability) *SessionMetrics {
	return &SessionMetrics{
		Connected: obs.Gauge(prometheus.GaugeOpts{
			Name: "crowdfund_session_connected",
			Help: "1 while a wallet account is granted",
		}),
	}
}
