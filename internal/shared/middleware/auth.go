package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"books-commons/internal/shared/apperror"
	"books-commons/internal/shared/response"
	"books-commons/pkg/jwt"
)

const memberIDKey = "member_id"

var errUnauthorized = apperror.New(apperror.KindUnauthorized, "AUTH001", "missing or invalid credentials")

// TokenValidator là phần của jwt.Manager mà middleware cần.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware xác thực Bearer token và set member id vào context.
// Không có identity hợp lệ -> 401 ngay tại entry.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ "Authorization: Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.FromError(c, errUnauthorized)
			c.Abort()
			return
		}

		// 2. Verify và parse JWT
		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			response.FromError(c, errUnauthorized)
			c.Abort()
			return
		}

		// 3. member_id phải là uuid
		memberID, err := uuid.Parse(claims.MemberID)
		if err != nil {
			response.FromError(c, errUnauthorized)
			c.Abort()
			return
		}

		c.Set(memberIDKey, memberID)
		c.Next()
	}
}

// SetMemberID dùng trong test handler để giả lập request đã xác thực.
func SetMemberID(c *gin.Context, id uuid.UUID) {
	c.Set(memberIDKey, id)
}

// MemberID lấy member id do AuthMiddleware set, lỗi Unauthorized nếu không có.
func MemberID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(memberIDKey)
	if !exists {
		return uuid.Nil, errUnauthorized
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, errUnauthorized
	}
	return id, nil
}
