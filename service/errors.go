package service

import "errors"

var (
	ErrCustomerNotFound   = errors.New("customer does not exist")
	ErrInsufficientPoints = errors.New("not enough points to redeem")
)
