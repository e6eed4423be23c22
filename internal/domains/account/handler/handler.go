package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"books-commons/internal/domains/account/model"
	"books-commons/internal/domains/account/service"
	"books-commons/internal/shared/middleware"
	"books-commons/internal/shared/response"
)

type AccountHandler struct {
	accountService service.Service
}

func NewAccountHandler(accountService service.Service) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Register
// POST /api/v1/auth/signup
func (h *AccountHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.accountService.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, member)
}

// Login
// POST /api/v1/auth/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.accountService.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Me
// GET /api/v1/users/me
func (h *AccountHandler) Me(c *gin.Context) {
	memberID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	member, err := h.accountService.Me(c.Request.Context(), memberID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, member)
}
