package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "faopulse/internal/errors"
	"faopulse/internal/optionchain"
)

// OptionChainInterface is the collaborator surface the handler needs.
type OptionChainInterface interface {
	Snapshot(ctx context.Context) (optionchain.Chain, error)
}

// OptionChainHandler serves the live option chain view.
type OptionChainHandler struct {
	client       OptionChainInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewOptionChainHandler creates the option chain handler.
func NewOptionChainHandler(client OptionChainInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *OptionChainHandler {
	return &OptionChainHandler{
		client:       client,
		logger:       logger.With(slog.String("component", "optionchain_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the option chain routes.
func (h *OptionChainHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetChain)
	return r
}

// GetChain polls upstream and renders the two-expiry chain with poll deltas.
// This endpoint is live data: a failed upstream poll is a 502, not a cached
// fallback.
func (h *OptionChainHandler) GetChain(w http.ResponseWriter, r *http.Request) {
	chain, err := h.client.Snapshot(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, chain)
}
