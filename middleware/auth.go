package middleware

import (
	"crypto/subtle"

	"github.com/Jayjokeer/loyalty-api/pkg/log"
	"github.com/Jayjokeer/loyalty-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const HeaderApiKey = "x-api-key"

// Auth 校验静态共享密钥
func Auth(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		got := c.GetHeader(HeaderApiKey)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			log.L.Debug("unauthorized request",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()))
			response.Abort(c, response.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
