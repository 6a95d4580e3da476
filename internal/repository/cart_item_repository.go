package repository

import (
	"context"

	"scatch/internal/domain/model"
)

type CartItemRepository interface {
	//商品スナップショット付きで明細一覧を返す。
	ListByProfileID(ctx context.Context, profileID string) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID string) (model.CartItem, error)
	FindByProfileAndProduct(ctx context.Context, profileID string, productID string) (model.CartItem, error)
	// 同一商品はプラス
	UpsertByProfileAndProduct(ctx context.Context, profileID string, productID string, addQty int64) error
	UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error
	DeleteByID(ctx context.Context, cartItemID string) error
	//カート全消し（チェックアウト完了後など）
	DeleteAllByProfileID(ctx context.Context, profileID string) error
	IsOwnedByProfile(ctx context.Context, cartItemID string, profileID string) (bool, error)
}
