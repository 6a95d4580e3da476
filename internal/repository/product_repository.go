package repository

import (
	"context"
	"errors"

	"scatch/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	//全商品を新着順で返す（ページングなし）。
	ListNewest(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, productID string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	//指定フィールドだけの部分更新。更新後の行を返す。
	UpdateFields(ctx context.Context, productID string, fields map[string]interface{}) (model.Product, error)
	Delete(ctx context.Context, productID string) error
}

// 在庫の増減を約束。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID string, qty int64) error
}
