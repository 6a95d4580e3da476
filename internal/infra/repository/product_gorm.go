package repository

import (
	"context"
	"errors"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 全商品を新着順で返す。
func (r *ProductGormRepository) ListNewest(ctx context.Context) ([]model.Product, error) {
	var items []model.Product

	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return []model.Product{}, err
	}

	return items, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, productID string) (model.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 渡されたフィールドだけ更新して、更新後の行を返す。
func (r *ProductGormRepository) UpdateFields(ctx context.Context, productID string, fields map[string]interface{}) (model.Product, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(fields)

	if res.Error != nil {
		return model.Product{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Product{}, repo.ErrNotFound
	}

	return r.FindByID(ctx, productID)
}

func (r *ProductGormRepository) Delete(ctx context.Context, productID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&model.Product{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
