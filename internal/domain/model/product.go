package model

import "time"

type Category string

const (
	CategoryTote     Category = "Tote"
	CategoryBackpack Category = "Backpack"
	CategoryClutches Category = "Clutches"
)

// 取り扱いカテゴリかどうか。
func (c Category) Valid() bool {
	switch c {
	case CategoryTote, CategoryBackpack, CategoryClutches:
		return true
	}
	return false
}

// 商品。価格は通貨の整数単位で持つ。
type Product struct {
	ID          string   `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string   `gorm:"type:varchar(255);not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Price       int64    `gorm:"not null" json:"price"`
	Category    Category `gorm:"type:varchar(20);not null;index" json:"category"`

	//素材ラベル（絞り込みに使う）
	MaterialType string `gorm:"type:varchar(100);not null;index" json:"material_type"`

	//在庫。負数にはしない。
	StockCount int64 `gorm:"not null;default:0" json:"stock_count"`

	ImageURL *string `gorm:"type:text" json:"image_url"`
	IsVegan  bool    `gorm:"not null;default:true" json:"is_vegan"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
