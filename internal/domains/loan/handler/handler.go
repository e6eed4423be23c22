package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"books-commons/internal/domains/loan/model"
	"books-commons/internal/domains/loan/service"
	"books-commons/internal/shared/middleware"
	"books-commons/internal/shared/response"
	"books-commons/internal/shared/utils"
)

// =====================================================
// LOAN HANDLER
// =====================================================

type LoanHandler struct {
	loanService service.Service
}

func NewLoanHandler(loanService service.Service) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// RequestLoan
// POST /api/v1/loans
func (h *LoanHandler) RequestLoan(c *gin.Context) {
	borrowerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req model.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	loan, err := h.loanService.RequestLoan(c.Request.Context(), borrowerID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, loan)
}

// ListMine
// GET /api/v1/loans/mine?status=requested
func (h *LoanHandler) ListMine(c *gin.Context) {
	actorID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	var status *model.Status
	if raw := c.Query("status"); raw != "" {
		s := model.Status(raw)
		status = &s
	}

	loans, err := h.loanService.ListMine(c.Request.Context(), actorID, status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, loans, &response.Meta{Total: len(loans)})
}

// GetLoan
// GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c *gin.Context) {
	actorID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	loanID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.Get(c.Request.Context(), actorID, loanID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

// Approve
// POST /api/v1/loans/:id/approve
func (h *LoanHandler) Approve(c *gin.Context) {
	h.transition(c, h.loanService.Approve)
}

// Reject
// POST /api/v1/loans/:id/reject
func (h *LoanHandler) Reject(c *gin.Context) {
	h.transition(c, h.loanService.Reject)
}

// Handover
// POST /api/v1/loans/:id/handover
func (h *LoanHandler) Handover(c *gin.Context) {
	h.transition(c, h.loanService.Handover)
}

// Return
// POST /api/v1/loans/:id/return
func (h *LoanHandler) Return(c *gin.Context) {
	h.transition(c, h.loanService.Return)
}

type transitionFunc func(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error)

func (h *LoanHandler) transition(c *gin.Context, fn transitionFunc) {
	actorID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	loanID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := fn(c.Request.Context(), actorID, loanID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}
