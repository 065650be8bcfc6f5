package handler

import (
	"strings"

	"github.com/Jayjokeer/loyalty-api/pkg/context"
	"github.com/Jayjokeer/loyalty-api/pkg/response"
	"github.com/Jayjokeer/loyalty-api/service"
	"github.com/Jayjokeer/loyalty-api/types"

	"github.com/gin-gonic/gin"
)

type Customer struct {
	CustomerService service.ICustomerService
}

func (h *Customer) RegisterRouter(r gin.IRouter) {
	r.POST("/customers", context.Wrap(h.Create))
}

// Create 手机号已注册时返回 200 和已有客户, 否则 201
func (h *Customer) Create(c *gin.Context) error {
	var req types.CreateCustomerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.InvalidRequest("Phone is required")
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return response.InvalidRequest("Phone is required")
	}

	customer, created, err := h.CustomerService.CreateOrGet(c.Request.Context(), phone, req.Email)
	if err != nil {
		return err
	}
	if created {
		response.Created(c, customer)
		return nil
	}
	response.Success(c, customer)
	return nil
}
