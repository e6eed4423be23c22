package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"books-commons/internal/shared/response"
)

// ParseUUIDParam đọc path param dạng uuid, tự trả 400 nếu sai format
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern build pattern ILIKE '%q%' với ký tự đặc biệt đã escape
func ContainsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
