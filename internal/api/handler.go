// Package api contains the HTTP handlers for the items resource and the
// database health probe.
package api

import (
	"context"
	"log/slog"

	"github.com/joaosp7/teste-principia-backend/internal/items"
	"github.com/joaosp7/teste-principia-backend/internal/storage"
)

// Pinger is implemented by dependencies that can report their own liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler dispatches item requests to the resource service and translates
// service errors into HTTP status codes.
type Handler struct {
	Service *items.Service
	Store   storage.Repository

	// RateLimiter is pinged by the health endpoint when the rate-limit
	// window store lives in Redis. Nil when limiting is purely in-memory.
	RateLimiter Pinger

	Logger *slog.Logger
}

func NewHandler(service *items.Service, store storage.Repository, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Service: service, Store: store, Logger: logger}
}
