package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"books-commons/internal/domains/catalog/model"
	"books-commons/internal/domains/catalog/service"
	"books-commons/internal/shared/middleware"
	"books-commons/internal/shared/response"
	"books-commons/internal/shared/utils"
)

// =====================================================
// CATALOG HANDLER (books)
// =====================================================

type CatalogHandler struct {
	catalogService service.Service
}

func NewCatalogHandler(catalogService service.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Search
// GET /api/v1/books/search?q=
func (h *CatalogHandler) Search(c *gin.Context) {
	results, err := h.catalogService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, results, &response.Meta{Total: len(results)})
}

// LookupByISBN
// GET /api/v1/books/isbn/:isbn - 201 nếu entry vừa được tạo từ external provider
func (h *CatalogHandler) LookupByISBN(c *gin.Context) {
	result, err := h.catalogService.LookupByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, result.Book)
}

// CreateBook
// POST /api/v1/books
func (h *CatalogHandler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.CreateBook(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, result.Book)
}

// GetBook
// GET /api/v1/books/:id
func (h *CatalogHandler) GetBook(c *gin.Context) {
	viewerID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	bookID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.catalogService.GetBook(c.Request.Context(), viewerID, bookID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}
