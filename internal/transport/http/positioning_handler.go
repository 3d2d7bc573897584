package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"faopulse/internal/config"
	"faopulse/internal/dataprocessing"
	apierrors "faopulse/internal/errors"
)

// PositioningServiceInterface is the service surface the handler needs.
type PositioningServiceInterface interface {
	Dashboard(ctx context.Context, asOf time.Time) (dataprocessing.Dashboard, error)
	Trend(ctx context.Context, asOf time.Time, days int) ([]dataprocessing.TrendPoint, error)
}

// PositioningHandler serves the dashboard and trend endpoints.
type PositioningHandler struct {
	service      PositioningServiceInterface
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPositioningHandler creates the positioning handler.
func NewPositioningHandler(service PositioningServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PositioningHandler {
	return &PositioningHandler{
		service:      service,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "positioning_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the positioning routes.
func (h *PositioningHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dashboard", h.GetDashboard)
	r.Get("/trend", h.GetTrend)

	return r
}

// trendQuery holds the validated /trend parameters.
type trendQuery struct {
	Days int `validate:"min=1,max=30"`
}

// GetDashboard renders the full metrics contract for the latest trading day,
// or for an explicit ?date=YYYY-MM-DD (the compare flow). Dates in the
// future or on holidays resolve backward to a trading day, so any date is
// acceptable once it parses.
func (h *PositioningHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("date", "must be a YYYY-MM-DD date"))
			return
		}
		asOf = parsed
	}

	dash, err := h.service.Dashboard(r.Context(), asOf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, dash)
}

// GetTrend renders the net sentiment series for ?days=N trading days,
// defaulting to the standard trend window.
func (h *PositioningHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	query := trendQuery{Days: config.TrendWindowDays}
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("days", "must be an integer"))
			return
		}
		query.Days = days
	}
	if err := h.validate.Struct(query); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("days", "must be between 1 and 30"))
		return
	}

	points, err := h.service.Trend(r.Context(), time.Now(), query.Days)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"days":   query.Days,
		"points": points,
	})
}
