package repository

import (
	"context"

	"scatch/internal/domain/model"
)

type OrderRepository interface {
	//明細と商品スナップショット付きで1件返す。
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	//本人の注文を新着順で返す。
	ListByProfileID(ctx context.Context, profileID string) ([]model.Order, error)
	//全注文を新着順で返す（オーナー用）。
	ListAll(ctx context.Context) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error)
}
