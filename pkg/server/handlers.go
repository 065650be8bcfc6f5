package server

import (
	"github.com/Jayjokeer/loyalty-api/handler"
)

type Handlers struct {
	Health   *handler.Health
	Customer *handler.Customer
	Points   *handler.Point
	Wallet   *handler.Wallet
}
