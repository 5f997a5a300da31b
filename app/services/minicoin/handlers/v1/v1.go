// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/minicoin/app/services/minicoin/handlers/v1/coingrp"
	"github.com/ardanlabs/minicoin/foundation/blockchain/state"
	"github.com/ardanlabs/minicoin/foundation/events"
	"github.com/ardanlabs/minicoin/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	cgh := coingrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/join", cgh.Join)
	app.Handle(http.MethodPost, version, "/buy", cgh.Buy)
	app.Handle(http.MethodPost, version, "/send", cgh.Send)
	app.Handle(http.MethodGet, version, "/wallet/:username", cgh.Wallet)
	app.Handle(http.MethodGet, version, "/chain", cgh.Chain)
	app.Handle(http.MethodGet, version, "/chain/verify", cgh.VerifyChain)
	app.Handle(http.MethodGet, version, "/tx/pending", cgh.Pending)
	app.Handle(http.MethodGet, version, "/accounts", cgh.Accounts)
	app.Handle(http.MethodGet, version, "/events", cgh.Events)
}
