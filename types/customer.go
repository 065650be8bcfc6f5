package types

type CreateCustomerReq struct {
	Phone string  `json:"phone" binding:"required"`
	Email *string `json:"email"`
}

type HealthResp struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
