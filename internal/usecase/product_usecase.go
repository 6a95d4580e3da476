package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 検証済みJWTから作る操作者。UIの出し分けは信用せず、
// オーナー限定の操作はここで必ずロールを見る。
type Actor struct {
	ProfileID string
	Role      model.Role
}

func (a Actor) IsOwner() bool {
	return a.Role == model.RoleOwner
}

// オーナー以外を弾く共通チェック。
func requireOwner(a Actor) error {
	if a.ProfileID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !a.IsOwner() {
		return NewHTTPError(http.StatusForbidden, "owner only")
	}
	return nil
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		auditRepo:   auditRepo,
	}
}

// 全商品を新着順で返す。ページングなし。
func (u *ProductUsecase) List(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.ListNewest(ctx)
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) Detail(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 読み込み済み一覧へのカテゴリ・素材の絞り込み。
// 純粋な述語フィルタで、何回かけても結果は変わらない。
// nilは「指定なし」。
func FilterProducts(items []model.Product, category *string, material *string) []model.Product {
	out := make([]model.Product, 0, len(items))
	for _, p := range items {
		if category != nil && string(p.Category) != *category {
			continue
		}
		if material != nil && p.MaterialType != *material {
			continue
		}
		out = append(out, p)
	}
	return out
}

type CreateProductInput struct {
	Name         string
	Description  string
	Price        int64
	Category     string
	MaterialType string
	StockCount   int64
	ImageURL     *string
	IsVegan      bool
}

func (u *ProductUsecase) Create(ctx context.Context, actor Actor, in CreateProductInput) (model.Product, error) {
	if err := requireOwner(actor); err != nil {
		return model.Product{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.StockCount < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if !model.Category(in.Category).Valid() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}

	now := time.Now()
	created, err := u.productRepo.Create(ctx, model.Product{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        in.Price,
		Category:     model.Category(in.Category),
		MaterialType: strings.TrimSpace(in.MaterialType),
		StockCount:   in.StockCount,
		ImageURL:     in.ImageURL,
		IsVegan:      in.IsVegan,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（商品登録）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorProfileID: actor.ProfileID,
		Action:         model.AuditActionCreateProduct,
		ResourceType:   model.AuditResourceProduct,
		ResourceID:     created.ID,
		AfterJSON:      fmt.Sprintf(`{"name":%q,"price":%d,"stock_count":%d}`, created.Name, created.Price, created.StockCount),
		CreatedAt:      time.Now(),
	}); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return created, nil
}

// 部分更新の入力。nilのフィールドは触らない。
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Price        *int64
	Category     *string
	MaterialType *string
	StockCount   *int64
	ImageURL     *string
	IsVegan      *bool
}

func (u *ProductUsecase) Update(ctx context.Context, actor Actor, productID string, in UpdateProductInput) (model.Product, error) {
	if err := requireOwner(actor); err != nil {
		return model.Product{}, err
	}
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	fields := map[string]interface{}{}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		fields["price"] = *in.Price
	}
	if in.Category != nil {
		if !model.Category(*in.Category).Valid() {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		fields["category"] = *in.Category
	}
	if in.MaterialType != nil {
		fields["material_type"] = strings.TrimSpace(*in.MaterialType)
	}
	if in.StockCount != nil {
		if *in.StockCount < 0 {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
		}
		fields["stock_count"] = *in.StockCount
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if in.IsVegan != nil {
		fields["is_vegan"] = *in.IsVegan
	}

	if len(fields) == 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "no fields")
	}
	fields["updated_at"] = time.Now()

	//変更前を取得（監査ログ用）
	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	updated, err := u.productRepo.UpdateFields(ctx, productID, fields)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorProfileID: actor.ProfileID,
		Action:         model.AuditActionUpdateProduct,
		ResourceType:   model.AuditResourceProduct,
		ResourceID:     productID,
		BeforeJSON:     fmt.Sprintf(`{"price":%d,"stock_count":%d}`, before.Price, before.StockCount),
		AfterJSON:      fmt.Sprintf(`{"price":%d,"stock_count":%d}`, updated.Price, updated.StockCount),
		CreatedAt:      time.Now(),
	}); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return updated, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, actor Actor, productID string) error {
	if err := requireOwner(actor); err != nil {
		return err
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.Delete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorProfileID: actor.ProfileID,
		Action:         model.AuditActionDeleteProduct,
		ResourceType:   model.AuditResourceProduct,
		ResourceID:     productID,
		CreatedAt:      time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
