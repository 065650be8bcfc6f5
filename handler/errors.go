package handler

import (
	"errors"

	"github.com/Jayjokeer/loyalty-api/pkg/response"
	"github.com/Jayjokeer/loyalty-api/service"
)

// bizError 服务层哨兵错误 -> 对外错误码, 其余错误原样返回由 Wrap 记为 INTERNAL_ERROR
func bizError(err error) error {
	switch {
	case errors.Is(err, service.ErrCustomerNotFound):
		return response.ErrCustomerNotFound
	case errors.Is(err, service.ErrInsufficientPoints):
		return response.ErrInsufficientPoints
	}
	return err
}
