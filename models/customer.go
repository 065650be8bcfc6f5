package models

import "time"

// Customer 客户, 以手机号唯一, 创建后不再修改
type Customer struct {
	ID        string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Phone     string    `gorm:"column:phone;not null;uniqueIndex;size:32" json:"phone"`
	Email     *string   `gorm:"column:email;size:255" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

func (Customer) TableName() string {
	return "customers"
}
