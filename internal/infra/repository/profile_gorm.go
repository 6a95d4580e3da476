package repository

import (
	"context"
	"errors"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"

	"gorm.io/gorm"
)

type ProfileGormRepository struct {
	db *gorm.DB
}

// DI
func NewProfileGormRepository(db *gorm.DB) *ProfileGormRepository {
	return &ProfileGormRepository{db: db}
}

func (r *ProfileGormRepository) Create(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileGormRepository) FindByID(ctx context.Context, profileID string) (*model.Profile, error) {
	var p model.Profile

	err := r.db.WithContext(ctx).
		Where("id = ?", profileID).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileGormRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileGormRepository) Update(ctx context.Context, p *model.Profile) error {
	res := r.db.WithContext(ctx).Save(p)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// 強制ログアウト用。既発行のアクセストークンを全部無効にする。
func (r *ProfileGormRepository) IncrementTokenVersion(ctx context.Context, profileID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", profileID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrProfileNotFound
	}
	return nil
}
