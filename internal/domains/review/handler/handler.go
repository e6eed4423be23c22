package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"books-commons/internal/domains/review/model"
	"books-commons/internal/domains/review/service"
	"books-commons/internal/shared/middleware"
	"books-commons/internal/shared/response"
	"books-commons/internal/shared/utils"
)

// =====================================================
// REVIEW HANDLER
// =====================================================

type ReviewHandler struct {
	reviewService service.Service
}

func NewReviewHandler(reviewService service.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ListByBook
// GET /api/v1/books/:id/reviews
func (h *ReviewHandler) ListByBook(c *gin.Context) {
	viewerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	bookID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListByBook(c.Request.Context(), viewerID, bookID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, reviews, &response.Meta{Total: len(reviews)})
}

// CreateReview
// POST /api/v1/books/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	authorID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	bookID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), authorID, bookID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review)
}

// UpdateReview
// PATCH /api/v1/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	authorID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	reviewID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), authorID, reviewID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// DeleteReview
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	authorID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	reviewID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), authorID, reviewID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Feed
// GET /api/v1/reviews/feed
func (h *ReviewHandler) Feed(c *gin.Context) {
	reviews, err := h.reviewService.Feed(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, reviews, &response.Meta{Total: len(reviews)})
}
