// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package component

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/configuration"
	"github.com/insolar/crowdfund/connectivity"
	"github.com/insolar/crowdfund/internal/ledger"
	"github.com/insolar/crowdfund/internal/normalize"
	"github.com/insolar/crowdfund/internal/pinning"
	"github.com/insolar/crowdfund/internal/session"
	"github.com/insolar/crowdfund/internal/store"
	"github.com/insolar/crowdfund/observability"
)

type Manager struct {
	cfg *configuration.Configuration
	log *logrus.Logger

	init func(context.Context)
	stop func()

	router *Router
	api    *echo.Echo

	session *session.Controller
	bridge  *ledger.Bridge
	store   *store.CampaignStore
	pinning *pinning.Client
	images  *normalize.ImageResolver
}

// Prepare wires every component. Providers that cannot be reached are left out and
// surface as PROVIDER_UNAVAILABLE on use.
func Prepare(ctx context.Context, cfg *configuration.Configuration, opts ...Option) (*Manager, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	obs := observability.Make(cfg.Log)
	log := obs.Log()

	if !common.IsHexAddress(cfg.Ledger.ContractAddress) {
		return nil, errors.Errorf("invalid contract address %q", cfg.Ledger.ContractAddress)
	}

	conn := connectivity.Make(ctx, cfg, obs)
	w := makeWallet(cfg, obs, conn, o)
	sess := session.New(w, log.WithField("component", "session"))

	images := normalize.NewImageResolver(cfg.Content.GatewayURL, cfg.Content.PlaceholderURL, cfg.Content.VerifyTimeout)
	norm := normalize.New(images, cfg.Display.DateLayout, loadLocation(cfg.Display.TimeZone, log))

	bridge := ledger.New(ledger.Config{
		Address:          common.HexToAddress(cfg.Ledger.ContractAddress),
		ContributeMethod: cfg.Ledger.ContributeMethod,
		PollInterval:     cfg.Ledger.PollInterval,
		Concurrency:      cfg.Ledger.Concurrency,
	}, conn.Ledger(), w, sess, norm, obs)

	campaigns, err := store.NewCampaignStore(bridge, cfg.Cache.Size, cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}
	uploader := pinning.New(cfg.Pinning, log.WithField("component", "pinning"))

	sessionMetrics := observability.MakeSessionMetrics(obs)
	router := NewRouter(cfg, obs, conn, sess, sessionMetrics)
	e := makeAPI(cfg, obs, campaigns, uploader, sess, images)

	return &Manager{
		cfg:     cfg,
		log:     log,
		init:    makeInitter(obs, sess, sessionMetrics),
		stop:    makeStopper(obs, conn, router, e),
		router:  router,
		api:     e,
		session: sess,
		bridge:  bridge,
		store:   campaigns,
		pinning: uploader,
		images:  images,
	}, nil
}

func loadLocation(name string, log logrus.FieldLogger) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithField("zone", name).Warn("unknown time zone, local time is used")
		return time.Local
	}
	return loc
}

// Start restores the wallet session and starts both HTTP listeners.
func (m *Manager) Start(ctx context.Context) {
	m.router.Start()
	m.Init(ctx)
	go func() {
		err := m.api.Start(m.cfg.API.Listen)
		if err != nil && !errors.Is(err, errServerClosed) {
			m.log.Error(errors.Wrapf(err, "api server Start"))
		}
	}()
}

// Init restores the wallet session without starting any listener.
func (m *Manager) Init(ctx context.Context) {
	m.init(ctx)
}

func (m *Manager) Stop() {
	m.stop()
}

func (m *Manager) Session() *session.Controller {
	return m.session
}

func (m *Manager) Store() *store.CampaignStore {
	return m.store
}

func (m *Manager) Bridge() *ledger.Bridge {
	return m.bridge
}

func (m *Manager) Pinning() *pinning.Client {
	return m.pinning
}

func (m *Manager) Images() *normalize.ImageResolver {
	return m.images
}

func (m *Manager) Log() *logrus.Logger {
	return m.log
}
