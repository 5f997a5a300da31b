package mid_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/minicoin/business/web/errs"
	"github.com/ardanlabs/minicoin/business/web/mid"
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newApp(handler web.Handler, mw ...web.Middleware) *web.App {
	log := zap.NewNop().Sugar()

	mw = append([]web.Middleware{mid.Errors(log)}, mw...)
	app := web.NewApp(make(chan os.Signal, 1), mw...)
	app.Handle(http.MethodGet, "v1", "/test", handler)

	return app
}

func TestRateLimit(t *testing.T) {
	ok := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	t.Log("Given the need to limit the rate of requests.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen sending more requests than the burst allows.", testID)
		{
			const burst = 3
			app := newApp(ok, mid.RateLimit(0.001, burst))

			for i := 0; i < burst; i++ {
				w := httptest.NewRecorder()
				app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))
				if w.Code != http.StatusNoContent {
					t.Fatalf("\t%s\tTest %d:\tShould allow request %d within the burst: %d", failed, testID, i, w.Code)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould allow the requests within the burst.", success, testID)

			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))
			if w.Code != http.StatusTooManyRequests {
				t.Fatalf("\t%s\tTest %d:\tShould reject the request over the burst: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the request over the burst.", success, testID)

			if w.Header().Get("Retry-After") == "" {
				t.Fatalf("\t%s\tTest %d:\tShould set the Retry-After header.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould set the Retry-After header.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the limiter is disabled.", testID)
		{
			app := newApp(ok, mid.RateLimit(0, 1))

			for i := 0; i < 10; i++ {
				w := httptest.NewRecorder()
				app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))
				if w.Code != http.StatusNoContent {
					t.Fatalf("\t%s\tTest %d:\tShould allow every request: %d", failed, testID, w.Code)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould allow every request.", success, testID)
		}
	}
}

func TestErrors(t *testing.T) {
	type table struct {
		name   string
		err    error
		status int
	}

	tt := []table{
		{name: "notfound", err: errs.FromLedger(fmt.Errorf("sender: %w", database.ErrUserNotFound)), status: http.StatusNotFound},
		{name: "funds", err: errs.FromLedger(database.ErrInsufficientFunds), status: http.StatusBadRequest},
		{name: "amount", err: errs.FromLedger(database.ErrInvalidAmount), status: http.StatusBadRequest},
		{name: "self", err: errs.FromLedger(database.ErrSelfTransfer), status: http.StatusBadRequest},
		{name: "address", err: errs.FromLedger(database.ErrAddressInUse), status: http.StatusConflict},
		{name: "persistence", err: errs.FromLedger(database.ErrPersistence), status: http.StatusInternalServerError},
	}

	t.Log("Given the need to report ledger errors to the client.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s error.", testID, tst.name)
			{
				f := func(t *testing.T) {
					h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
						return tst.err
					}

					w := httptest.NewRecorder()
					newApp(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))

					if w.Code != tst.status {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, w.Code)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.status)
						t.Fatalf("\t%s\tTest %d:\tShould get the expected status.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected status.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestCors(t *testing.T) {
	ok := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	t.Log("Given the need to allow cross origin requests.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a specific origin is configured.", testID)
		{
			w := httptest.NewRecorder()
			newApp(ok, mid.Cors("https://minicoin.dev")).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://minicoin.dev" {
				t.Fatalf("\t%s\tTest %d:\tShould set the origin: %q", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould set the origin.", success, testID)

			if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Fatalf("\t%s\tTest %d:\tShould allow credentials.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould allow credentials.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen any origin is allowed.", testID)
		{
			w := httptest.NewRecorder()
			newApp(ok, mid.Cors("*")).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))

			if w.Header().Get("Access-Control-Allow-Credentials") != "" {
				t.Fatalf("\t%s\tTest %d:\tShould not allow credentials for a wildcard.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not allow credentials for a wildcard.", success, testID)
		}
	}
}
