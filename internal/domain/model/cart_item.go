package model

import "time"

// カート明細。(profile, product)の組で1行だけ持つ。
// 同じ商品を追加したら数量加算になる（行は増えない）。
type CartItem struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID string `gorm:"type:uuid;not null;uniqueIndex:uq_cart_profile_product" json:"profile_id"`
	ProductID string `gorm:"type:uuid;not null;uniqueIndex:uq_cart_profile_product" json:"product_id"`
	Quantity  int64  `gorm:"not null" json:"quantity"`

	//表示用の商品スナップショット（Preloadで埋める）
	Product Product `gorm:"foreignKey:ProductID" json:"product"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
