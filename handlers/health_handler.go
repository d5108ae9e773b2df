package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/pool-tournament-manager/storage"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db       Pinger
	pictures storage.ProfilePictureStore
	logger   *slog.Logger
}

func NewHealthHandler(db Pinger, pictures storage.ProfilePictureStore, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, pictures: pictures, logger: logger}
}

// LiveHandler обрабатывает GET /healthz
func (h *HealthHandler) LiveHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// ReadyHandler обрабатывает GET /readyz: база и бакет проверяются параллельно.
func (h *HealthHandler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := h.db.PingContext(gctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := h.pictures.CheckAccess(gctx); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.WarnContext(r.Context(), "Readiness check failed", slog.Any("error", err))
		errorResponse(w, r, h.logger, http.StatusServiceUnavailable, err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ready"}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
