package model

import "time"

// 注文明細。注文と同時に作られ、その後は変更しない。
// price_at_purchaseは注文時点の価格。商品価格が後で変わっても再計算しない。
type OrderItem struct {
	ID              string `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID         string `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID       string `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity        int64  `gorm:"not null" json:"quantity"`
	PriceAtPurchase int64  `gorm:"not null;column:price_at_purchase" json:"price_at_purchase"`

	Product Product `gorm:"foreignKey:ProductID" json:"product"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
