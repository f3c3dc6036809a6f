package handlers

import (
	"errors"
	"net/http"

	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/services"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReviewHandler serves the review API and the review webhooks.
type ReviewHandler struct {
	reviews *services.ReviewService
	log     *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		log:     log.Named("review"),
	}
}

// ReviewRequest is the body of a created review.
type ReviewRequest struct {
	ReviewerEmail string `json:"reviewer_email" binding:"required,email"`
	ReviewerName  string `json:"reviewer_name"  binding:"required"`
	Body          string `json:"body"`
}

// ReviewResponse is the public view of a review.
type ReviewResponse struct {
	ID            string `json:"id"`
	ReviewerEmail string `json:"reviewer_email"`
	ReviewerName  string `json:"reviewer_name"`
}

func toReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:            r.ID,
		ReviewerEmail: r.ReviewerEmail,
		ReviewerName:  r.ReviewerName,
	}
}

// reviewErrorStatus maps review creation errors to a status and a message.
func reviewErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidReview):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrReviewConflict):
		return http.StatusConflict, "review already exists"
	default:
		return http.StatusInternalServerError, "failed to create review"
	}
}

func flashError(msg string) []util.Flash {
	return []util.Flash{{Level: util.FlashError, Message: msg}}
}

func flashInfo(msg string) []util.Flash {
	return []util.Flash{{Level: util.FlashInfo, Message: msg}}
}

// List returns every stored review.
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list reviews", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "failed to list reviews",
		})
		return
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create stores a review submitted through the API.
func (h *ReviewHandler) Create(c *gin.Context) {
	review, ok := h.create(c, services.SourceAPI)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, toReviewResponse(review))
}

// ReviewCreated receives the review_created webhook.
func (h *ReviewHandler) ReviewCreated(c *gin.Context) {
	if _, ok := h.create(c, services.SourceWebhook); !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func (h *ReviewHandler) create(c *gin.Context, source string) (*models.Review, bool) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
		return nil, false
	}

	review, err := h.reviews.Create(c.Request.Context(), services.CreateReviewInput{
		ReviewerEmail: req.ReviewerEmail,
		ReviewerName:  req.ReviewerName,
		Body:          req.Body,
	}, source)
	if err != nil {
		status, msg := reviewErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("failed to create review", zap.String("source", source), zap.Error(err))
		}
		c.JSON(status, gin.H{
			"error":             http.StatusText(status),
			"error_description": msg,
		})
		return nil, false
	}
	return review, true
}
