package handler

import (
	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/middleware"
	"github.com/Jayjokeer/loyalty-api/pkg/context"
	"github.com/Jayjokeer/loyalty-api/pkg/response"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"
	"github.com/Jayjokeer/loyalty-api/service"
	"github.com/Jayjokeer/loyalty-api/types"

	"github.com/gin-gonic/gin"
)

type Point struct {
	Config       *config.Config
	PointService service.IPointService
	Idempotency  dao.IdempotencyStore
	Calendar     *timeutil.Calendar
}

func (p *Point) RegisterRouter(r gin.IRouter) {
	idempotent := middleware.Idempotency(p.Idempotency, p.Calendar.Now)
	r.POST("/earn", idempotent, context.Wrap(p.Earn))
	r.POST("/redeem", idempotent, context.Wrap(p.Redeem))
}

func (p *Point) Earn(c *gin.Context) error {
	var req types.EarnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.InvalidRequest("customerId, amountMinor, and currency are required")
	}
	if req.Currency != p.Config.Loyalty.Currency {
		return response.InvalidCurrency(p.Config.Loyalty.Currency)
	}

	resp, err := p.PointService.Earn(c.Request.Context(), req.CustomerID, *req.AmountMinor)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, resp)
	return nil
}

func (p *Point) Redeem(c *gin.Context) error {
	var req types.RedeemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.InvalidRequest("customerId and points are required")
	}

	resp, err := p.PointService.Redeem(c.Request.Context(), req.CustomerID, *req.Points)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, resp)
	return nil
}
