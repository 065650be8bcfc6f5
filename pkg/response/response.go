package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 错误响应体
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func Fail(c *gin.Context, e *BizError) {
	if e.Replayable {
		c.Set(CtxReplayable, true)
	}
	c.JSON(e.Status, Response{
		Error:   e.Code,
		Message: e.Msg,
	})
}
