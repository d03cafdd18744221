package handlers

import (
	"context"
	"net/http"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/pkg/logging"
)

type reviewsAPI interface {
	Reviews(ctx context.Context) ([]clinicapi.Review, error)
	CreateReview(ctx context.Context, review clinicapi.Review) error
}

// ReviewsHandler serves the public testimonial wall.
type ReviewsHandler struct {
	api    reviewsAPI
	logger *logging.Logger
}

// NewReviewsHandler creates the reviews handler.
func NewReviewsHandler(api reviewsAPI, logger *logging.Logger) *ReviewsHandler {
	if api == nil {
		panic("handlers: reviews API required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReviewsHandler{api: api, logger: logger}
}

// List returns published reviews; public.
// GET /api/reviews
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.api.Reviews(r.Context())
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// Create submits a review; public, no account required.
// POST /api/reviews
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var review clinicapi.Review
	if !decodeBody(w, r, &review) {
		return
	}
	if review.Name == "" || review.Message == "" {
		jsonError(w, "name and message are required", http.StatusBadRequest)
		return
	}
	if review.Rating < 1 || review.Rating > 5 {
		jsonError(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	if err := h.api.CreateReview(r.Context(), review); err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}
