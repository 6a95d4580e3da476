package usecase

import (
	"context"
	"testing"

	"scatch/internal/domain/model"
	repo "scatch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: ProductRepository
// =====================

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListNewest(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, productID string) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *MockProductRepository) UpdateFields(ctx context.Context, productID string, fields map[string]interface{}) (model.Product, error) {
	args := m.Called(ctx, productID, fields)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// =====================
// Mock: InventoryRepository
// =====================

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) IncreaseStock(ctx context.Context, productID string, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

// =====================
// Mock: CartItemRepository
// =====================

type MockCartItemRepository struct {
	mock.Mock
}

func (m *MockCartItemRepository) ListByProfileID(ctx context.Context, profileID string) ([]model.CartItem, error) {
	args := m.Called(ctx, profileID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *MockCartItemRepository) FindByID(ctx context.Context, cartItemID string) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	ci, _ := args.Get(0).(model.CartItem)
	return ci, args.Error(1)
}

func (m *MockCartItemRepository) FindByProfileAndProduct(ctx context.Context, profileID string, productID string) (model.CartItem, error) {
	args := m.Called(ctx, profileID, productID)
	ci, _ := args.Get(0).(model.CartItem)
	return ci, args.Error(1)
}

func (m *MockCartItemRepository) UpsertByProfileAndProduct(ctx context.Context, profileID string, productID string, addQty int64) error {
	args := m.Called(ctx, profileID, productID, addQty)
	return args.Error(0)
}

func (m *MockCartItemRepository) UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *MockCartItemRepository) DeleteByID(ctx context.Context, cartItemID string) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *MockCartItemRepository) DeleteAllByProfileID(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

func (m *MockCartItemRepository) IsOwnedByProfile(ctx context.Context, cartItemID string, profileID string) (bool, error) {
	args := m.Called(ctx, cartItemID, profileID)
	return args.Bool(0), args.Error(1)
}

// =====================
// Mock: OrderRepository
// =====================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListByProfileID(ctx context.Context, profileID string) ([]model.Order, error) {
	args := m.Called(ctx, profileID)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

// =====================
// Mock: OrderItemRepository
// =====================

type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *MockOrderItemRepository) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

// =====================
// Mock: AuditLogRepository
// =====================

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Fake: TransactionManager
// =====================

// トランザクション境界をそのまま関数実行に置き換える。
// エラーが返ればロールバック相当（以降の書き込みは無かった扱い）とみなす。
type fakeTxRepos struct {
	orders     *MockOrderRepository
	orderItems *MockOrderItemRepository
	cartItems  *MockCartItemRepository
	products   *MockProductRepository
	inventory  *MockInventoryRepository
}

func (f fakeTxRepos) Orders() repo.OrderRepository         { return f.orders }
func (f fakeTxRepos) OrderItems() repo.OrderItemRepository { return f.orderItems }
func (f fakeTxRepos) CartItems() repo.CartItemRepository   { return f.cartItems }
func (f fakeTxRepos) Products() repo.ProductRepository     { return f.products }
func (f fakeTxRepos) Inventory() repo.InventoryRepository  { return f.inventory }

type fakeTxManager struct {
	repos fakeTxRepos
}

func newFakeTxManager() *fakeTxManager {
	return &fakeTxManager{
		repos: fakeTxRepos{
			orders:     new(MockOrderRepository),
			orderItems: new(MockOrderItemRepository),
			cartItems:  new(MockCartItemRepository),
			products:   new(MockProductRepository),
			inventory:  new(MockInventoryRepository),
		},
	}
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(f.repos)
}

// =====================
// ヘルパ
// =====================

func assertHTTPError(t *testing.T, err error, wantStatus int) {
	t.Helper()
	he, ok := AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, wantStatus, he.Status)
	}
}
