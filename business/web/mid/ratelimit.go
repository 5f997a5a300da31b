package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/minicoin/business/web/errs"
	"github.com/ardanlabs/minicoin/foundation/web"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests once the shared token bucket is empty. A zero
// rate disables the limiter.
func RateLimit(perSecond float64, burst int) web.Middleware {
	if perSecond <= 0 {
		return func(handler web.Handler) web.Handler {
			return handler
		}
	}

	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				return errs.NewTrusted(errors.New("too many requests"), http.StatusTooManyRequests)
			}

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
