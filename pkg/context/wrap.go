package context

import (
	"errors"

	"github.com/Jayjokeer/loyalty-api/pkg/log"
	"github.com/Jayjokeer/loyalty-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CtxRequestID = "request_id"

type HandlerFunc func(*gin.Context) error

func Wrap(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {

			// 如果已经写过响应，直接返回
			if c.Writer.Written() {
				return
			}
			// 业务错误
			var be *response.BizError
			if errors.As(err, &be) {
				response.Fail(c, be)
				return
			}
			log.L.Error("request failed",
				zap.String("request_id", c.GetString(CtxRequestID)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			response.Fail(c, response.ErrInternal)
		}
	}
}
