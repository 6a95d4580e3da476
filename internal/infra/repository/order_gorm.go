package repository

import (
	"context"
	"errors"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細と商品スナップショット付きで1件取得。
func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order

	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", orderID).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByProfileID(ctx context.Context, profileID string) ([]model.Order, error) {
	var items []model.Order

	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("profile_id = ?", profileID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}

	return items, nil
}

// 全注文を新着順（オーナー用）。
func (r *OrderGormRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	var items []model.Order

	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}

	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	//明細はCreateBulkで入れるのでここでは保存しない
	items := order.Items
	order.Items = nil

	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, err
	}

	order.Items = items
	return order, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

// 明細を一括作成。注文作成と同じトランザクションで呼ぶ。
func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = orderID
		it.Product = model.Product{}
		rows = append(rows, it)
	}

	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	var items []model.OrderItem

	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return []model.OrderItem{}, err
	}

	return items, nil
}
