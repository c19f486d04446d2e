package resolver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/infrastructure/store/mocks"
	"github.com/example/marketplace-backend/internal/seller"
)

func newTestResolver() (*Resolver, *mocks.MockStore) {
	mock := mocks.NewMockStore()
	svc := seller.NewService(mock, mock, nil)
	return New(svc), mock
}

func invoke(t *testing.T, r *Resolver, fieldName string, args any) any {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	event := Event{Arguments: raw}
	event.Info.FieldName = fieldName

	resp, err := r.Handle(context.Background(), event)
	require.NoError(t, err, "Handle must never return an error")
	return resp
}

// ============================================
// Dispatch Tests
// ============================================

func TestHandle_UnknownField(t *testing.T) {
	r, _ := newTestResolver()

	resp := invoke(t, r, "deleteEverything", map[string]string{})

	errResp, ok := resp.(ErrorResponse)
	require.True(t, ok)
	assert.False(t, errResp.Success)
	assert.Contains(t, errResp.Error, "deleteEverything")
}

func TestHandle_MalformedArguments(t *testing.T) {
	r, _ := newTestResolver()

	event := Event{Arguments: json.RawMessage(`{"orderId": 42`)}
	event.Info.FieldName = "manageOrder"

	resp, err := r.Handle(context.Background(), event)

	require.NoError(t, err)
	orderResp, ok := resp.(OrderResponse)
	require.True(t, ok)
	assert.False(t, orderResp.Success)
	assert.Contains(t, orderResp.Error, "malformed arguments")
}

// ============================================
// manageOrder Tests
// ============================================

func TestManageOrder_Success(t *testing.T) {
	r, mock := newTestResolver()
	mock.SeedOrder(&order.Order{
		ID: "o1", SellerID: "seller-1", Status: order.StatusNew,
		Total: 1000, CreatedAt: time.Now(),
	})

	resp := invoke(t, r, "manageOrder", ManageOrderArgs{
		Action:   "accept",
		OrderID:  "o1",
		SellerID: "seller-1",
	})

	orderResp, ok := resp.(OrderResponse)
	require.True(t, ok)
	assert.True(t, orderResp.Success)
	require.NotNil(t, orderResp.Order)
	assert.Equal(t, order.StatusProcessing, orderResp.Order.Status)
	assert.Empty(t, orderResp.Error)
}

func TestManageOrder_ServiceErrorBecomesPayload(t *testing.T) {
	r, _ := newTestResolver()

	resp := invoke(t, r, "manageOrder", ManageOrderArgs{
		Action:   "accept",
		OrderID:  "missing",
		SellerID: "seller-1",
	})

	orderResp, ok := resp.(OrderResponse)
	require.True(t, ok)
	assert.False(t, orderResp.Success)
	assert.Nil(t, orderResp.Order)
	assert.NotEmpty(t, orderResp.Error)
}

// ============================================
// createOrder Tests
// ============================================

func TestCreateOrder_Success(t *testing.T) {
	r, mock := newTestResolver()

	resp := invoke(t, r, "createOrder", seller.CreateOrderInput{
		SellerID: "seller-1",
		BuyerID:  "buyer-1",
		Items:    []order.LineItem{{ProductID: "p1", Name: "Widget", Price: 300, Quantity: 2}},
	})

	orderResp, ok := resp.(OrderResponse)
	require.True(t, ok)
	assert.True(t, orderResp.Success)
	require.NotNil(t, orderResp.Order)
	assert.Equal(t, 600, orderResp.Order.Total)

	_, stored := mock.StoredOrder(orderResp.Order.ID)
	assert.True(t, stored)
}

// ============================================
// manageProduct Tests
// ============================================

func TestManageProduct_CreateUpdateDelete(t *testing.T) {
	r, mock := newTestResolver()

	// Create
	resp := invoke(t, r, "manageProduct", map[string]any{
		"action":   "create",
		"sellerId": "seller-1",
		"product":  map[string]any{"name": "Widget", "price": 500, "stock": 5},
	})
	created, ok := resp.(ProductResponse)
	require.True(t, ok)
	require.True(t, created.Success)
	productID := created.Product.ID

	// Update
	resp = invoke(t, r, "manageProduct", map[string]any{
		"action":    "update",
		"sellerId":  "seller-1",
		"productId": productID,
		"product":   map[string]any{"price": 750},
	})
	updated, ok := resp.(ProductResponse)
	require.True(t, ok)
	require.True(t, updated.Success)
	assert.Equal(t, 750, updated.Product.Price)

	// Delete
	resp = invoke(t, r, "manageProduct", map[string]any{
		"action":    "delete",
		"sellerId":  "seller-1",
		"productId": productID,
	})
	deleted, ok := resp.(ProductResponse)
	require.True(t, ok)
	assert.True(t, deleted.Success)

	_, exists := mock.StoredProduct(productID)
	assert.False(t, exists)
}

func TestManageProduct_UnknownAction(t *testing.T) {
	r, _ := newTestResolver()

	resp := invoke(t, r, "manageProduct", map[string]any{
		"action":   "archive",
		"sellerId": "seller-1",
	})

	productResp, ok := resp.(ProductResponse)
	require.True(t, ok)
	assert.False(t, productResp.Success)
	assert.Contains(t, productResp.Error, "archive")
}

func TestManageProduct_SellerIDComesFromArguments(t *testing.T) {
	r, mock := newTestResolver()

	// The product body cannot smuggle in a different owner.
	resp := invoke(t, r, "manageProduct", map[string]any{
		"action":   "create",
		"sellerId": "seller-1",
		"product":  map[string]any{"name": "Widget", "price": 100, "seller_id": "seller-evil"},
	})

	created, ok := resp.(ProductResponse)
	require.True(t, ok)
	require.True(t, created.Success)
	assert.Equal(t, "seller-1", created.Product.SellerID)

	stored, _ := mock.StoredProduct(created.Product.ID)
	assert.Equal(t, "seller-1", stored.SellerID)
}

// ============================================
// getSellerTransactions Tests
// ============================================

func TestGetSellerTransactions_Success(t *testing.T) {
	r, mock := newTestResolver()
	mock.SeedOrder(&order.Order{
		ID: "o1", SellerID: "seller-1", OrderNumber: "ORD-o1",
		Status: order.StatusDelivered, Total: 1000, CreatedAt: time.Now(),
	})

	resp := invoke(t, r, "getSellerTransactions", TransactionsArgs{SellerID: "seller-1"})

	txResp, ok := resp.(TransactionsResponse)
	require.True(t, ok)
	assert.True(t, txResp.Success)
	require.Len(t, txResp.Transactions, 1)
	assert.Equal(t, 1, txResp.TotalTransactions)
	assert.Equal(t, 900, txResp.CurrentBalance)
}

func TestGetSellerTransactions_MissingSellerID(t *testing.T) {
	r, _ := newTestResolver()

	resp := invoke(t, r, "getSellerTransactions", TransactionsArgs{})

	txResp, ok := resp.(TransactionsResponse)
	require.True(t, ok)
	assert.False(t, txResp.Success)
	assert.NotEmpty(t, txResp.Error)
}

// ============================================
// getSellerAnalytics Tests
// ============================================

func TestGetSellerAnalytics_Success(t *testing.T) {
	r, mock := newTestResolver()
	mock.SeedOrder(&order.Order{
		ID: "o1", SellerID: "seller-1",
		Status: order.StatusDelivered, Total: 1000, CreatedAt: time.Now(),
	})

	resp := invoke(t, r, "getSellerAnalytics", AnalyticsArgs{SellerID: "seller-1", Period: "all"})

	aResp, ok := resp.(AnalyticsResponse)
	require.True(t, ok)
	assert.True(t, aResp.Success)
	require.NotNil(t, aResp.Analytics)
	assert.Equal(t, 1000, aResp.Analytics.TotalRevenue)
}

func TestGetSellerAnalytics_UnknownPeriod(t *testing.T) {
	r, _ := newTestResolver()

	resp := invoke(t, r, "getSellerAnalytics", AnalyticsArgs{SellerID: "seller-1", Period: "decade"})

	aResp, ok := resp.(AnalyticsResponse)
	require.True(t, ok)
	assert.False(t, aResp.Success)
	assert.Nil(t, aResp.Analytics)
}
