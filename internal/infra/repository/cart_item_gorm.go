package repository

import (
	"context"
	"errors"
	"time"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// カート明細を商品付きで一覧取得
func (r *CartItemGormRepository) ListByProfileID(ctx context.Context, profileID string) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("profile_id = ?", profileID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

func (r *CartItemGormRepository) FindByID(ctx context.Context, cartItemID string) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", cartItemID).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

func (r *CartItemGormRepository) FindByProfileAndProduct(ctx context.Context, profileID string, productID string) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND product_id = ?", profileID, productID).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// 同一商品は数量加算
func (r *CartItemGormRepository) UpsertByProfileAndProduct(ctx context.Context, profileID string, productID string, addQty int64) error {

	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.CartItem

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("profile_id = ? AND product_id = ?", profileID, productID).
			First(&item).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			newQty := item.Quantity + addQty

			res := tx.Model(&model.CartItem{}).
				Where("id = ?", item.ID).
				Update("quantity", newQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		now := time.Now()
		newItem := model.CartItem{
			ID:        uuid.NewString(),
			ProfileID: profileID,
			ProductID: productID,
			Quantity:  addQty,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := tx.Create(&newItem).Error; err != nil {
			return err
		}

		return nil
	})
}

// 明細の数量を更新
func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartItemID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", cartItemID).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カートを空にする。0件でもエラーにしない。
func (r *CartItemGormRepository) DeleteAllByProfileID(ctx context.Context, profileID string) error {
	return r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Delete(&model.CartItem{}).Error
}

//cartItemが、そのprofileのものかを判定

func (r *CartItemGormRepository) IsOwnedByProfile(ctx context.Context, cartItemID string, profileID string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND profile_id = ?", cartItemID, profileID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
