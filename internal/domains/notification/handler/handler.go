package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"books-commons/internal/domains/notification/service"
	"books-commons/internal/shared/middleware"
	"books-commons/internal/shared/response"
	"books-commons/internal/shared/utils"
)

type NotificationHandler struct {
	service service.Service
}

func NewNotificationHandler(s service.Service) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// ListMine
// GET /api/v1/notifications
func (h *NotificationHandler) ListMine(c *gin.Context) {
	userID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	response.Success(c, http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

// MarkRead
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_read": true})
}

// MarkAllRead
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := middleware.MemberID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	n, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}
