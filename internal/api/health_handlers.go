package api

import (
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"
)

type healthResponse struct {
	Status string            `json:"status"`
	Infos  map[string]string `json:"infos"`
}

// HealthDB pings the datastore, and the rate-limit store when one is
// configured, in parallel. Backend failures come back as an opaque 500; the
// driver message is only logged.
func (h *Handler) HealthDB(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		return
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		if err := h.Store.Ping(ctx); err != nil {
			return fmt.Errorf("datastore: %w", err)
		}
		return nil
	})
	if h.RateLimiter != nil {
		g.Go(func() error {
			if err := h.RateLimiter.Ping(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		h.Logger.Error("health check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Infos:  map[string]string{"db": "up"},
	})
}
