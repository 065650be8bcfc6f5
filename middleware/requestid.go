package middleware

import (
	"github.com/Jayjokeer/loyalty-api/pkg/context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-Id"

// RequestID 沿用调用方传入的请求 ID, 没有则生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(context.CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
