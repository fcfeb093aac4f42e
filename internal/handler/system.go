package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/parkqueue/parkqueue-api/internal/mailer"
)

// DatabasePinger reports storage connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the health, connectivity-test and page endpoints.
type SystemHandler struct {
	db        DatabasePinger
	mailer    mailer.Sender
	staticDir string
	logger    *zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler instance.
func NewSystemHandler(
	db DatabasePinger,
	mailer mailer.Sender,
	staticDir string,
	logger *zerolog.Logger,
) *SystemHandler {
	return &SystemHandler{
		db:        db,
		mailer:    mailer,
		staticDir: staticDir,
		logger:    logger,
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

// Health reports server liveness plus a quick storage check.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("database health check failed")
		database = "unreachable"
	}

	respondJSON(w, http.StatusOK, healthResponse{
		Status:    "Server is running",
		Database:  database,
		Email:     "configured",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// TestEmail dials the SMTP server to verify outbound email connectivity.
func (h *SystemHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.mailer.Ping(); err != nil {
		h.logger.Error().Err(err).Msg("smtp connectivity test failed")
		respondError(w, http.StatusServiceUnavailable, "SMTP server unreachable")
		return
	}

	respondMessage(w, http.StatusOK, "SMTP server reachable")
}

// TestDB pings the database.
func (h *SystemHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("database connectivity test failed")
		respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	respondMessage(w, http.StatusOK, "database reachable")
}

// Page returns a handler that serves one fixed HTML file from the static
// directory.
func (h *SystemHandler) Page(name string) http.HandlerFunc {
	path := filepath.Join(h.staticDir, name)
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}
}

// NotFoundAPI is the catch-all for unmatched /api routes.
func NotFoundAPI(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "API endpoint not found")
}
