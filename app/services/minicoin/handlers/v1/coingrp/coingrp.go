// Package coingrp maintains the group of handlers for ledger access.
package coingrp

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/minicoin/business/sys/metrics"
	"github.com/ardanlabs/minicoin/business/web/errs"
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/blockchain/state"
	"github.com/ardanlabs/minicoin/foundation/events"
	"github.com/ardanlabs/minicoin/foundation/validate"
	"github.com/ardanlabs/minicoin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Join creates an account for the username if it does not exist.
func (h Handlers) Join(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req joinRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	act, created, err := h.State.Join(req.Username)
	if err != nil {
		return errs.FromLedger(err)
	}

	h.Log.Infow("join", "traceid", web.GetTraceID(ctx), "username", act.Username, "created", created)

	resp := joinResponse{
		Message: "user joined",
		Address: string(act.Address),
		Created: created,
	}
	status := http.StatusCreated

	if !created {
		resp.Message = "user already exists"
		status = http.StatusOK
	}

	return web.Respond(ctx, w, resp, status)
}

// Buy mints coins for the user.
func (h Handlers) Buy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req buyRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	act, err := h.State.Buy(req.Username, req.Amount)
	if err != nil {
		return errs.FromLedger(err)
	}

	metrics.AddBuys(ctx)

	h.Log.Infow("buy", "traceid", web.GetTraceID(ctx), "username", act.Username, "amount", req.Amount, "balance", act.Balance)

	resp := buyResponse{
		Message:    "coins purchased",
		NewBalance: act.Balance,
		Account:    toAccount(act),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Send transfers coins from one user to a user or address.
func (h Handlers) Send(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req sendRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	tr, err := h.State.Send(req.FromUser, req.To, req.Amount)
	if err != nil {
		return errs.FromLedger(err)
	}

	metrics.AddSends(ctx)
	metrics.AddBlocks(ctx, len(tr.Sealed))

	h.Log.Infow("send", "traceid", web.GetTraceID(ctx), "tx", tr.Tx.String(), "sealed", len(tr.Sealed))

	resp := sendResponse{
		Message: "transaction successful",
		Tx:      tr.Tx,
		From:    toAccount(tr.From),
		To:      toAccount(tr.To),
		Sealed:  toBlockHeaders(tr.Sealed),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Wallet returns the account for the username.
func (h Handlers) Wallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	username := web.Param(r, "username")

	act, err := h.State.Wallet(username)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, toAccount(act), http.StatusOK)
}

// Chain returns every block in the chain.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.ChainView(), http.StatusOK)
}

// VerifyChain reports whether the chain is hash linked.
func (h Handlers) VerifyChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := verifyResponse{
		Valid:  true,
		Blocks: len(h.State.ChainView()),
	}

	if err := h.State.VerifyChain(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pending returns the transactions not yet sealed into a block.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.Pending()
	if txs == nil {
		txs = []database.Tx{}
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// Accounts returns every account and the coin supply.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := accountsResponse{
		Supply:        h.State.Supply(),
		MilestoneSize: h.State.MilestoneSize(),
		Accounts:      toAccounts(h.State.Accounts()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide ledger events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// decode reads the request body. A body that can't be decoded is the
// client's fault so it is reported as a bad request.
func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return nil
}
