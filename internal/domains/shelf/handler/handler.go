package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"books-commons/internal/domains/shelf/model"
	"books-commons/internal/domains/shelf/service"
	"books-commons/internal/shared/middleware"
	"books-commons/internal/shared/response"
	"books-commons/internal/shared/utils"
)

// =====================================================
// SHELF HANDLER (user-books)
// =====================================================

type ShelfHandler struct {
	shelfService service.Service
}

func NewShelfHandler(shelfService service.Service) *ShelfHandler {
	return &ShelfHandler{shelfService: shelfService}
}

// AddCopy
// POST /api/v1/user-books
func (h *ShelfHandler) AddCopy(c *gin.Context) {
	ownerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req model.AddCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.shelfService.AddCopy(c.Request.Context(), ownerID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// GetCopy
// GET /api/v1/user-books/:id
func (h *ShelfHandler) GetCopy(c *gin.Context) {
	viewerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	copyID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.shelfService.GetCopy(c.Request.Context(), viewerID, copyID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// UpdateCopy
// PATCH /api/v1/user-books/:id
func (h *ShelfHandler) UpdateCopy(c *gin.Context) {
	ownerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	copyID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.shelfService.UpdateCopy(c.Request.Context(), ownerID, copyID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// DeleteCopy
// DELETE /api/v1/user-books/:id
func (h *ShelfHandler) DeleteCopy(c *gin.Context) {
	ownerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	copyID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.shelfService.DeleteCopy(c.Request.Context(), ownerID, copyID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListMine
// GET /api/v1/user-books/mine
func (h *ShelfHandler) ListMine(c *gin.Context) {
	ownerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	items, err := h.shelfService.ListMine(c.Request.Context(), ownerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: len(items)})
}

// ListByOwner
// GET /api/v1/users/:id/books
func (h *ShelfHandler) ListByOwner(c *gin.Context) {
	viewerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	ownerID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	items, err := h.shelfService.ListByOwner(c.Request.Context(), viewerID, ownerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: len(items)})
}

// ExportShelf
// GET /api/v1/user-books/mine/export
func (h *ShelfHandler) ExportShelf(c *gin.Context) {
	ownerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	data, err := h.shelfService.ExportShelf(c.Request.Context(), ownerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	filename := fmt.Sprintf("shelf_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
