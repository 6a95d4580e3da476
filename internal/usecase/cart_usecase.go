package usecase

import (
	"context"
	"net/http"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"
)

// 送料の固定ルール。カート画面とチェックアウトで同じ定数を使い、
// 同じ金額が再計算できること。
const (
	FreeShippingThreshold int64 = 150
	FlatShippingFee       int64 = 12
)

type CartTotals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Total       int64 `json:"total"`
}

// 小計 = Σ(商品価格 × 数量)。小計が閾値以上なら送料無料。
func ComputeTotals(items []model.CartItem) CartTotals {
	var subtotal int64 = 0
	for _, it := range items {
		subtotal += it.Product.Price * it.Quantity
	}

	var fee int64 = 0
	if subtotal < FreeShippingThreshold {
		fee = FlatShippingFee
	}
	if len(items) == 0 {
		fee = 0
	}

	return CartTotals{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal + fee,
	}
}

type CartResponse struct {
	Items  []model.CartItem `json:"items"`
	Totals CartTotals       `json:"totals"`
}

type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

// DI
func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// カート取得（リモートと同期した最新の明細＋金額）。
func (u *CartUsecase) GetCart(ctx context.Context, profileID string) (CartResponse, error) {
	if profileID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, profileID)
}

type AddToCartInput struct {
	ProductID string
	Quantity  int64
}

// カートに追加（同一商品は数量加算、行は増やさない）。
// 在庫を超える追加はDBに書く前に弾く。在庫0の商品もここで止まる。
func (u *CartUsecase) AddToCart(ctx context.Context, profileID string, in AddToCartInput) (CartResponse, error) {
	if profileID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//既存行があれば加算後の数量で在庫チェック
	var existingQty int64 = 0
	existing, err := u.cartItemRepo.FindByProfileAndProduct(ctx, profileID, in.ProductID)
	if err == nil {
		existingQty = existing.Quantity
	} else if err != repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if existingQty+in.Quantity > p.StockCount {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpsertByProfileAndProduct(ctx, profileID, in.ProductID, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, profileID)
}

// 数量変更。1未満は何もしない（削除は明示的なRemoveで行う）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, profileID string, cartItemID string, qty int64) (CartResponse, error) {
	if profileID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	//1未満はno-op。書き込みは発行しない。
	if qty < 1 {
		return u.buildCartResponse(ctx, profileID)
	}

	owned, err := u.cartItemRepo.IsOwnedByProfile(ctx, cartItemID, profileID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//在庫チェック
	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if qty > p.StockCount {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, profileID)
}

// 明細削除
func (u *CartUsecase) RemoveLine(ctx context.Context, profileID string, cartItemID string) (CartResponse, error) {
	if profileID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItemRepo.IsOwnedByProfile(ctx, cartItemID, profileID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, profileID)
}

// カートを空にする。注文確定後は注文処理側のトランザクションで消すので、
// これは明示的な全消し用。
func (u *CartUsecase) PurgeCart(ctx context.Context, profileID string) (CartResponse, error) {
	if profileID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.cartItemRepo.DeleteAllByProfileID(ctx, profileID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, profileID)
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, profileID string) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByProfileID(ctx, profileID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CartResponse{
		Items:  items,
		Totals: ComputeTotals(items),
	}, nil
}
