package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/minicoin/app/services/minicoin/handlers"
	"github.com/ardanlabs/minicoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/minicoin/foundation/blockchain/state"
	"github.com/ardanlabs/minicoin/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/minicoin/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newAPI(t *testing.T) http.Handler {
	st, err := state.New(state.Config{
		Storage: memory.New(),
		Genesis: genesis.Default(),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the ledger: %v", err)
	}

	return handlers.APIMux(handlers.MuxConfig{
		Shutdown:   make(chan os.Signal, 1),
		Log:        zap.NewNop().Sugar(),
		State:      st,
		Evts:       events.New(),
		CORSOrigin: "*",
	})
}

func TestAPI(t *testing.T) {
	type table struct {
		name   string
		method string
		path   string
		body   string
		status int
		field  string
		value  any
	}

	tt := []table{
		{name: "join", method: http.MethodPost, path: "/v1/join", body: `{"username":"alice"}`, status: http.StatusCreated, field: "message", value: "user joined"},
		{name: "rejoin", method: http.MethodPost, path: "/v1/join", body: `{"username":"alice"}`, status: http.StatusOK, field: "message", value: "user already exists"},
		{name: "buy", method: http.MethodPost, path: "/v1/buy", body: `{"username":"alice","amount":100}`, status: http.StatusOK, field: "new_balance", value: float64(100)},
		{name: "overspend", method: http.MethodPost, path: "/v1/send", body: `{"from_user":"alice","to":"bob","amount":150}`, status: http.StatusBadRequest},
		{name: "send", method: http.MethodPost, path: "/v1/send", body: `{"from_user":"alice","to":"deadbeef","amount":40}`, status: http.StatusOK, field: "message", value: "transaction successful"},
		{name: "wallet", method: http.MethodGet, path: "/v1/wallet/alice", status: http.StatusOK, field: "balance", value: float64(60)},
		{name: "receiver", method: http.MethodGet, path: "/v1/wallet/deadbeef", status: http.StatusOK, field: "address", value: "deadbeef"},
		{name: "unknown", method: http.MethodGet, path: "/v1/wallet/bob", status: http.StatusNotFound},
		{name: "invalid", method: http.MethodPost, path: "/v1/buy", body: `{"username":"alice","amount":0}`, status: http.StatusBadRequest, field: "error", value: "data validation error"},
		{name: "limit", method: http.MethodPost, path: "/v1/buy", body: `{"username":"alice","amount":1000001}`, status: http.StatusBadRequest, field: "error", value: "data validation error"},
		{name: "self", method: http.MethodPost, path: "/v1/send", body: `{"from_user":"alice","to":"alice","amount":1}`, status: http.StatusBadRequest},
		{name: "verify", method: http.MethodGet, path: "/v1/chain/verify", status: http.StatusOK, field: "valid", value: true},
		{name: "preflight", method: http.MethodOptions, path: "/v2/send", status: http.StatusNoContent},
	}

	t.Log("Given the need to serve the ledger over http.")
	{
		api := newAPI(t)

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen calling %s %s.", testID, tst.method, tst.path)
			{
				f := func(t *testing.T) {
					r := httptest.NewRequest(tst.method, tst.path, strings.NewReader(tst.body))
					w := httptest.NewRecorder()
					api.ServeHTTP(w, r)

					if w.Code != tst.status {
						t.Logf("\t%s\tTest %d:\tgot: %d %s", failed, testID, w.Code, w.Body.String())
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.status)
						t.Fatalf("\t%s\tTest %d:\tShould get the expected status.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected status.", success, testID)

					if w.Header().Get("Access-Control-Allow-Origin") != "*" {
						t.Fatalf("\t%s\tTest %d:\tShould set the CORS headers.", failed, testID)
					}

					if tst.field == "" {
						return
					}

					var doc map[string]any
					if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response: %v", failed, testID, err)
					}

					if doc[tst.field] != tst.value {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, doc[tst.field])
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.value)
						t.Fatalf("\t%s\tTest %d:\tShould get the expected %s.", failed, testID, tst.field)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected %s.", success, testID, tst.field)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestIndex(t *testing.T) {
	t.Log("Given the need to describe the api.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen requesting the index page.", testID)
		{
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			newAPI(t).ServeHTTP(w, r)

			if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/v1/send") {
				t.Fatalf("\t%s\tTest %d:\tShould list the endpoints: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould list the endpoints.", success, testID)
		}
	}
}
