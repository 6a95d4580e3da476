package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 支払いは代金引換のみ。
const PaymentMethodCOD = "cod"

// 注文。配送先は注文時点のスナップショットを列で持つ。
type Order struct {
	ID          string      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID   string      `gorm:"type:uuid;not null;index" json:"profile_id"`
	TotalAmount int64       `gorm:"not null" json:"total_amount"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	ShippingName       string `gorm:"type:varchar(255);not null" json:"shipping_name"`
	ShippingAddress    string `gorm:"type:varchar(255);not null" json:"shipping_address"`
	ShippingCity       string `gorm:"type:varchar(100);not null" json:"shipping_city"`
	ShippingPostalCode string `gorm:"type:varchar(20);not null" json:"shipping_postal_code"`
	ShippingPhone      string `gorm:"type:varchar(30);not null" json:"shipping_phone"`

	PaymentMethod string `gorm:"type:varchar(20);not null;default:'cod'" json:"payment_method"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
