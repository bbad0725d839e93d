package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/pkg/response"
)

// UserIDHeader carries the acting user's id, set by the edge gateway.
const UserIDHeader = "X-Sharer-User-Id"

const userIDKey = "user_id"

// Identity requires UserIDHeader and stores the parsed id on the context.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			response.Unauthorized(c, "missing "+UserIDHeader+" header")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid "+UserIDHeader+" header")
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// GetUserID returns the id stored by Identity.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
