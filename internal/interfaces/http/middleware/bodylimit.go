package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartfertilizer/backend/internal/interfaces/http/dto"
)

// MsgBodyTooLarge is returned when the request body exceeds the limit
const MsgBodyTooLarge = "Request body exceeds maximum allowed size"

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(MsgBodyTooLarge))
			return
		}

		// chunked bodies carry no Content-Length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
