package response

import (
	"fmt"
	"net/http"

	"github.com/Jayjokeer/loyalty-api/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 错误码
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeInvalidCurrency       = "INVALID_CURRENCY"
	CodeCustomerNotFound      = "CUSTOMER_NOT_FOUND"
	CodeInsufficientPoints    = "INSUFFICIENT_POINTS"
	CodeMissingIdempotencyKey = "MISSING_IDEMPOTENCY_KEY"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeTooManyRequests       = "TOO_MANY_REQUESTS"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
)

// CtxReplayable 本次响应是可重放的业务拒绝, 幂等中间件据此决定是否缓存
const CtxReplayable = "response.replayable"

type BizError struct {
	Status int
	Code   string
	Msg    string
	// Replayable 业务规则拒绝 (不是输入错误), 同一请求重试应得到同样结果
	Replayable bool
}

func (e *BizError) Error() string {
	return e.Code + ": " + e.Msg
}

func NewError(status int, code, msg string) *BizError {
	return &BizError{
		Status: status,
		Code:   code,
		Msg:    msg,
	}
}

var (
	ErrUnauthorized          = NewError(http.StatusUnauthorized, CodeUnauthorized, "Invalid or missing API key")
	ErrMissingIdempotencyKey = NewError(http.StatusBadRequest, CodeMissingIdempotencyKey, "Idempotency-Key header is required")
	ErrCustomerNotFound      = NewError(http.StatusNotFound, CodeCustomerNotFound, "Customer does not exist")
	ErrInsufficientPoints    = &BizError{Status: http.StatusBadRequest, Code: CodeInsufficientPoints, Msg: "Not enough points to redeem.", Replayable: true}
	ErrTooManyRequests       = NewError(http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests")
	ErrNotFound              = NewError(http.StatusNotFound, CodeNotFound, "Endpoint not found")
	ErrInternal              = NewError(http.StatusInternalServerError, CodeInternalError, "An internal error occurred")
)

func InvalidRequest(msg string) *BizError {
	return NewError(http.StatusBadRequest, CodeInvalidRequest, msg)
}

func InvalidCurrency(currency string) *BizError {
	return NewError(http.StatusBadRequest, CodeInvalidCurrency, fmt.Sprintf("Only %s currency is supported", currency))
}

// Recovery 配合 gin.CustomRecovery 使用
func Recovery(c *gin.Context, err any) {
	log.L.Error("panic recovered",
		zap.Any("error", err),
		zap.String("path", c.Request.URL.Path))
	Abort(c, ErrInternal)
}

func Abort(c *gin.Context, e *BizError) {
	Fail(c, e)
	c.Abort()
}
