package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/infrastructure/store"
)

// MockStore is an in-memory implementation of OrderStore and ProductStore
// for testing.
type MockStore struct {
	mu       sync.RWMutex
	orders   map[string]*order.Order
	products map[string]*product.Product

	// For tracking calls in tests
	StatusUpdates []store.StatusUpdate
	UpdateErr     error
	GetOrderErr   error
	ListOrdersErr error
	PutOrderErr   error
	GetProductErr error
	PutProductErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		orders:   make(map[string]*order.Order),
		products: make(map[string]*product.Product),
	}
}

// SeedOrder inserts an order without any condition checks.
func (m *MockStore) SeedOrder(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
}

// SeedProduct inserts a product without any condition checks.
func (m *MockStore) SeedProduct(p *product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
}

// StoredOrder returns a copy of the stored order, if present.
func (m *MockStore) StoredOrder(id string) (order.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return order.Order{}, false
	}
	return *o, true
}

// StoredProduct returns a copy of the stored product, if present.
func (m *MockStore) StoredProduct(id string) (product.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return product.Product{}, false
	}
	return *p, true
}

func (m *MockStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetOrderErr != nil {
		return nil, m.GetOrderErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockStore) ListOrdersBySeller(ctx context.Context, sellerID string, limit int32, nextToken string) ([]*order.Order, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListOrdersErr != nil {
		return nil, "", m.ListOrdersErr
	}

	var all []*order.Order
	for _, o := range m.orders {
		if o.SellerID == sellerID {
			cp := *o
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	offset := 0
	if nextToken != "" {
		offset, _ = strconv.Atoi(nextToken)
	}
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]

	token := ""
	if limit > 0 && int32(len(all)) > limit {
		all = all[:limit]
		token = strconv.Itoa(offset + int(limit))
	}
	return all, token, nil
}

func (m *MockStore) PutOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutOrderErr != nil {
		return m.PutOrderErr
	}
	if _, exists := m.orders[o.ID]; exists {
		return store.ErrConditionFailed
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockStore) UpdateOrderStatus(ctx context.Context, u store.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StatusUpdates = append(m.StatusUpdates, u)

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	o, ok := m.orders[u.OrderID]
	if !ok || o.Status != u.From || o.SellerID != u.SellerID {
		return store.ErrConditionFailed
	}
	o.Status = u.To
	o.UpdatedAt = u.UpdatedAt
	if u.TrackingNumber != "" {
		o.TrackingNumber = u.TrackingNumber
	}
	return nil
}

func (m *MockStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetProductErr != nil {
		return nil, m.GetProductErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockStore) CreateProduct(ctx context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutProductErr != nil {
		return m.PutProductErr
	}
	if _, exists := m.products[p.ID]; exists {
		return store.ErrConditionFailed
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MockStore) UpdateProduct(ctx context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutProductErr != nil {
		return m.PutProductErr
	}
	existing, ok := m.products[p.ID]
	if !ok || existing.SellerID != p.SellerID {
		return store.ErrConditionFailed
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MockStore) DeleteProduct(ctx context.Context, id, sellerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[id]
	if !ok || existing.SellerID != sellerID {
		return store.ErrConditionFailed
	}
	delete(m.products, id)
	return nil
}
