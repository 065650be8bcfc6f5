package handler

import (
	"github.com/Jayjokeer/loyalty-api/pkg/response"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"
	"github.com/Jayjokeer/loyalty-api/types"

	"github.com/gin-gonic/gin"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Health struct {
	Calendar *timeutil.Calendar
}

func (h *Health) RegisterRouter(r gin.IRouter) {
	r.GET("/health", h.Check)
}

func (h *Health) Check(c *gin.Context) {
	response.Success(c, types.HealthResp{
		Status:    "ok",
		Timestamp: h.Calendar.Now().Format(timestampLayout),
	})
}
