// Package seller implements the seller-facing operations: order lifecycle
// management, product CRUD, and the derived transaction ledger and analytics.
// Every operation checks record ownership before mutating anything.
package seller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/example/marketplace-backend/internal/analytics"
	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/infrastructure/store"
	"github.com/example/marketplace-backend/internal/ledger"
)

var (
	ErrUnauthorized = errors.New("record does not belong to seller")
	ErrInvalidInput = errors.New("invalid input")
)

const defaultTransactionLimit = 50

// EventPublisher publishes domain events after successful mutations.
// Satisfied by kafka.Producer; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	orders    store.OrderStore
	products  store.ProductStore
	publisher EventPublisher
}

func NewService(orders store.OrderStore, products store.ProductStore, publisher EventPublisher) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		publisher: publisher,
	}
}

// ============================================
// Order lifecycle
// ============================================

// ManageOrder applies a lifecycle action to an order on behalf of a seller.
// The ownership check runs before the transition table is consulted. The
// status write is conditional on the status read here, so a concurrent
// transition on the same order fails rather than double-applying.
func (s *Service) ManageOrder(ctx context.Context, action order.Action, orderID, sellerID, trackingNumber string) (*order.Order, error) {
	if orderID == "" || sellerID == "" {
		return nil, fmt.Errorf("%w: order id and seller id are required", ErrInvalidInput)
	}

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, ErrUnauthorized
	}

	next, err := order.NextStatus(action, o.Status)
	if err != nil {
		return nil, err
	}

	// Tracking numbers only travel with shipping actions. An empty value
	// keeps whatever the store already has.
	tracking := ""
	if action == order.ActionShip || action == order.ActionDeliver {
		tracking = trackingNumber
	}

	now := time.Now()
	err = s.orders.UpdateOrderStatus(ctx, store.StatusUpdate{
		OrderID:        orderID,
		SellerID:       sellerID,
		From:           o.Status,
		To:             next,
		TrackingNumber: tracking,
		UpdatedAt:      now,
	})
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, fmt.Errorf("%w: order changed concurrently", order.ErrTransition)
		}
		return nil, err
	}

	prev := o.Status
	o.Status = next
	o.UpdatedAt = now
	if tracking != "" {
		o.TrackingNumber = tracking
	}

	if s.publisher != nil {
		event := order.StatusChanged{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			SellerID:       o.SellerID,
			BuyerID:        o.BuyerID,
			CustomerEmail:  o.CustomerEmail,
			From:           prev,
			To:             next,
			TrackingNumber: o.TrackingNumber,
			ChangedAt:      now,
		}
		if err := s.publisher.Publish(ctx, o.ID, event); err != nil {
			log.Printf("[Seller] Failed to publish status change for order %s: %v", o.ID, err)
		}
	}

	return o, nil
}

// CreateOrderInput carries the fields needed to record a new order.
type CreateOrderInput struct {
	SellerID      string           `json:"seller_id"`
	BuyerID       string           `json:"buyer_id"`
	CustomerEmail string           `json:"customer_email"`
	Items         []order.LineItem `json:"items"`
}

// CreateOrder records a new order with status "new". The total is always
// computed server-side from the line items.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*order.Order, error) {
	if in.SellerID == "" || in.BuyerID == "" {
		return nil, fmt.Errorf("%w: seller id and buyer id are required", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", ErrInvalidInput)
	}

	total := 0
	for _, item := range in.Items {
		if item.Price < 0 || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line item price and quantity must be positive", ErrInvalidInput)
		}
		total += item.Price * item.Quantity
	}

	now := time.Now()
	o := &order.Order{
		ID:            uuid.New().String(),
		SellerID:      in.SellerID,
		BuyerID:       in.BuyerID,
		CustomerEmail: in.CustomerEmail,
		OrderNumber:   newOrderNumber(now),
		Status:        order.StatusNew,
		Items:         in.Items,
		Total:         total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.orders.PutOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%04d", now.Unix(), rand.Intn(10000))
}

// ============================================
// Product CRUD
// ============================================

// CreateProduct stores a new product for the seller.
func (s *Service) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p.ID = uuid.New().String()
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies an allow-listed field update to a product the seller
// owns. The guard fetches the current record first; the write stays
// conditional on the stored owner to narrow the check-then-write race.
func (s *Service) UpdateProduct(ctx context.Context, productID, sellerID string, u product.Update) (*product.Product, error) {
	p, err := s.guardProduct(ctx, productID, sellerID)
	if err != nil {
		return nil, err
	}

	p.Apply(u)
	p.UpdatedAt = time.Now()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.products.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes a product the seller owns.
func (s *Service) DeleteProduct(ctx context.Context, productID, sellerID string) error {
	if _, err := s.guardProduct(ctx, productID, sellerID); err != nil {
		return err
	}

	if err := s.products.DeleteProduct(ctx, productID, sellerID); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return ErrUnauthorized
		}
		return err
	}
	return nil
}

// guardProduct fetches a product and verifies the caller owns it.
func (s *Service) guardProduct(ctx context.Context, productID, sellerID string) (*product.Product, error) {
	if productID == "" || sellerID == "" {
		return nil, fmt.Errorf("%w: product id and seller id are required", ErrInvalidInput)
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, ErrUnauthorized
	}
	return p, nil
}

// ============================================
// Derived views
// ============================================

// TransactionPage is one page of a seller's derived transaction ledger.
type TransactionPage struct {
	Transactions      []ledger.Transaction `json:"transactions"`
	TotalTransactions int                  `json:"total_transactions"`
	CurrentBalance    int                  `json:"current_balance"`
	NextToken         string               `json:"next_token,omitempty"`
}

// Transactions derives the seller's transaction ledger from one page of
// order history. A limit of 0 or less uses the default page size.
func (s *Service) Transactions(ctx context.Context, sellerID string, limit int32, nextToken string) (*TransactionPage, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("%w: seller id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultTransactionLimit
	}

	orders, token, err := s.orders.ListOrdersBySeller(ctx, sellerID, limit, nextToken)
	if err != nil {
		return nil, err
	}

	txns, balance := ledger.Build(orders)
	return &TransactionPage{
		Transactions:      txns,
		TotalTransactions: len(txns),
		CurrentBalance:    balance,
		NextToken:         token,
	}, nil
}

// Analytics summarizes the seller's full order history for a period.
func (s *Service) Analytics(ctx context.Context, sellerID string, period analytics.Period) (*analytics.Summary, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("%w: seller id is required", ErrInvalidInput)
	}
	switch period {
	case "":
		period = analytics.PeriodAll
	case analytics.PeriodToday, analytics.PeriodWeek, analytics.PeriodMonth, analytics.PeriodAll:
	default:
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}

	var all []*order.Order
	token := ""
	for {
		orders, next, err := s.orders.ListOrdersBySeller(ctx, sellerID, 0, token)
		if err != nil {
			return nil, err
		}
		all = append(all, orders...)
		if next == "" {
			break
		}
		token = next
	}

	return analytics.Summarize(all, period, time.Now()), nil
}
