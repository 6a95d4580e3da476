package repository

import (
	"context"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫が足りるときだけ1文で減算する。足りなければfalse。
// WHERE句の条件で在庫が負になるのを防ぐ。
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock_count >= ?", productID, qty).
		UpdateColumn("stock_count", gorm.Expr("stock_count - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// 在庫戻し（キャンセル時）。
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID string, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_count", gorm.Expr("stock_count + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
