package usecase

import (
	"context"
	"net/http"
	"testing"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func strPtr(s string) *string { return &s }

func sampleProducts() []model.Product {
	return []model.Product{
		{ID: "p1", Name: "Canvas Tote", Category: model.CategoryTote, MaterialType: "canvas", Price: 45},
		{ID: "p2", Name: "Cork Backpack", Category: model.CategoryBackpack, MaterialType: "cork", Price: 120},
		{ID: "p3", Name: "Cork Tote", Category: model.CategoryTote, MaterialType: "cork", Price: 60},
	}
}

func TestFilterProducts_ByCategory(t *testing.T) {
	got := FilterProducts(sampleProducts(), strPtr("Tote"), nil)

	assert.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p3", got[1].ID)
}

func TestFilterProducts_ByCategoryAndMaterial(t *testing.T) {
	got := FilterProducts(sampleProducts(), strPtr("Tote"), strPtr("cork"))

	assert.Len(t, got, 1)
	assert.Equal(t, "p3", got[0].ID)
}

func TestFilterProducts_NilMeansAll(t *testing.T) {
	items := sampleProducts()
	got := FilterProducts(items, nil, nil)

	assert.Equal(t, items, got)
}

// 同じ条件を2回かけても結果は変わらない
func TestFilterProducts_Idempotent(t *testing.T) {
	once := FilterProducts(sampleProducts(), strPtr("Backpack"), nil)
	twice := FilterProducts(once, strPtr("Backpack"), nil)

	assert.Equal(t, once, twice)
}

// 元のスライスは書き換えない
func TestFilterProducts_DoesNotMutateInput(t *testing.T) {
	items := sampleProducts()
	_ = FilterProducts(items, strPtr("Clutches"), nil)

	assert.Equal(t, sampleProducts(), items)
}

func TestProductUsecase_List(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	productRepo.On("ListNewest", mock.Anything).Return(sampleProducts(), nil)

	got, err := uc.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, got, 3)
	productRepo.AssertExpectations(t)
}

func TestProductUsecase_Detail_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	productRepo.On("FindByID", mock.Anything, "missing").Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.Detail(context.Background(), "missing")

	assertHTTPError(t, err, http.StatusNotFound)
}

func TestProductUsecase_Create_RequiresOwner(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	customer := Actor{ProfileID: "u1", Role: model.RoleCustomer}

	_, err := uc.Create(context.Background(), customer, CreateProductInput{
		Name:     "Canvas Tote",
		Price:    45,
		Category: "Tote",
	})

	assertHTTPError(t, err, http.StatusForbidden)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUsecase_Create_WritesAuditLog(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	owner := Actor{ProfileID: "owner-1", Role: model.RoleOwner}
	created := model.Product{ID: "p1", Name: "Canvas Tote", Price: 45, StockCount: 10}

	productRepo.On("Create", mock.Anything, mock.Anything).Return(created, nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateProduct &&
			l.ActorProfileID == "owner-1" &&
			l.ResourceID == "p1"
	})).Return(nil)

	got, err := uc.Create(context.Background(), owner, CreateProductInput{
		Name:       "Canvas Tote",
		Price:      45,
		Category:   "Tote",
		StockCount: 10,
	})

	assert.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	auditRepo.AssertExpectations(t)
}

func TestProductUsecase_Create_InvalidCategory(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	owner := Actor{ProfileID: "owner-1", Role: model.RoleOwner}

	_, err := uc.Create(context.Background(), owner, CreateProductInput{
		Name:     "Mystery Bag",
		Price:    10,
		Category: "Satchel",
	})

	assertHTTPError(t, err, http.StatusBadRequest)
}

func TestProductUsecase_Update_NoFields(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	owner := Actor{ProfileID: "owner-1", Role: model.RoleOwner}

	_, err := uc.Update(context.Background(), owner, "p1", UpdateProductInput{})

	assertHTTPError(t, err, http.StatusBadRequest)
	productRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductUsecase_Update_PartialFields(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	owner := Actor{ProfileID: "owner-1", Role: model.RoleOwner}
	before := model.Product{ID: "p1", Price: 45, StockCount: 10}
	after := model.Product{ID: "p1", Price: 50, StockCount: 10}

	productRepo.On("FindByID", mock.Anything, "p1").Return(before, nil)
	productRepo.On("UpdateFields", mock.Anything, "p1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		_, hasPrice := fields["price"]
		_, hasName := fields["name"]
		return hasPrice && !hasName
	})).Return(after, nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	var newPrice int64 = 50
	got, err := uc.Update(context.Background(), owner, "p1", UpdateProductInput{Price: &newPrice})

	assert.NoError(t, err)
	assert.Equal(t, int64(50), got.Price)
	productRepo.AssertExpectations(t)
}

func TestProductUsecase_Delete_RequiresOwner(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	err := uc.Delete(context.Background(), Actor{ProfileID: "u1", Role: model.RoleCustomer}, "p1")

	assertHTTPError(t, err, http.StatusForbidden)
	productRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductUsecase_Delete_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	auditRepo := new(MockAuditLogRepository)
	uc := NewProductUsecase(productRepo, auditRepo)

	owner := Actor{ProfileID: "owner-1", Role: model.RoleOwner}
	productRepo.On("Delete", mock.Anything, "missing").Return(repo.ErrNotFound)

	err := uc.Delete(context.Background(), owner, "missing")

	assertHTTPError(t, err, http.StatusNotFound)
}
