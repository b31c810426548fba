package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"indoornav/internal/catalog"
	"indoornav/internal/domain"
	"indoornav/internal/service"
)

// Navigator is the navigation service the handlers serve
type Navigator interface {
	Snapshot() *service.Snapshot
	LastError() error
	Rebuild(ctx context.Context) (*service.Snapshot, error)
	Route(ctx context.Context, from, to string, opts ...service.RouteOption) (*service.RouteResponse, error)
	Rooms(ctx context.Context, floor domain.FloorID) ([]catalog.Entry, error)
	NearestRoom(ctx context.Context, floor domain.FloorID, x, y float64) (catalog.Entry, error)
	Floors(ctx context.Context) ([]domain.FloorInfo, error)
	Builds(ctx context.Context, limit int) ([]domain.BuildRecord, error)
	LatestBuild(ctx context.Context) (*domain.BuildRecord, error)
}

// NavHandler handles navigation API requests
type NavHandler struct {
	nav    Navigator
	logger *slog.Logger
}

// NewNavHandler creates a new navigation handler. A nil logger discards output.
func NewNavHandler(nav Navigator, logger *slog.Logger) *NavHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NavHandler{nav: nav, logger: logger.With(slog.String("component", "handler"))}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Helper methods

func (h *NavHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", slog.Any("error", err))
	}
}

func (h *NavHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Warn("failed to encode error response", slog.Any("error", err))
	}
}

// fail maps service errors onto HTTP statuses
func (h *NavHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoGraph):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrNoRepository):
		status = http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.writeError(w, msg, err.Error(), status)
}
