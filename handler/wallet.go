package handler

import (
	"github.com/Jayjokeer/loyalty-api/pkg/context"
	"github.com/Jayjokeer/loyalty-api/pkg/response"
	"github.com/Jayjokeer/loyalty-api/service"
	"github.com/Jayjokeer/loyalty-api/types"

	"github.com/gin-gonic/gin"
)

type Wallet struct {
	WalletService service.IWalletService
}

func (w *Wallet) RegisterRouter(r gin.IRouter) {
	walletGroup := r.Group("/wallet")
	walletGroup.GET("/:customerId", context.Wrap(w.Summary))
	walletGroup.GET("/:customerId/history", context.Wrap(w.History))
}

func (w *Wallet) Summary(c *gin.Context) error {
	resp, err := w.WalletService.Summary(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		return bizError(err)
	}
	response.Success(c, resp)
	return nil
}

func (w *Wallet) History(c *gin.Context) error {
	var req types.ListPointRecordsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return response.InvalidRequest("action must be 0, 1 or 2, cursor >= 0 and limit between 1 and 100")
	}

	resp, err := w.WalletService.History(c.Request.Context(), c.Param("customerId"), req.Action, req.Cursor, req.Limit)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, resp)
	return nil
}
