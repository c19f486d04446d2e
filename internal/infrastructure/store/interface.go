package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/product"
)

// ErrConditionFailed is returned when a conditional write loses to a
// concurrent change: the record's status or owner no longer matches what the
// caller read.
var ErrConditionFailed = errors.New("conditional write failed")

// StatusUpdate is a conditional single-item write moving an order between
// statuses. From is the status the caller observed; the write fails with
// ErrConditionFailed if the stored record has moved on, or if the stored
// seller id does not match SellerID.
type StatusUpdate struct {
	OrderID        string
	SellerID       string
	From           order.Status
	To             order.Status
	TrackingNumber string // empty keeps the stored tracking number
	UpdatedAt      time.Time
}

// OrderStore reads and writes order records in an external document store.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	// ListOrdersBySeller returns up to limit orders and an opaque
	// continuation token, empty when the listing is exhausted. A limit of 0
	// means no page size.
	ListOrdersBySeller(ctx context.Context, sellerID string, limit int32, nextToken string) ([]*order.Order, string, error)
	PutOrder(ctx context.Context, o *order.Order) error
	UpdateOrderStatus(ctx context.Context, u StatusUpdate) error
}

// ProductStore reads and writes product records.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	// CreateProduct fails with ErrConditionFailed if the id already exists.
	CreateProduct(ctx context.Context, p *product.Product) error
	// UpdateProduct overwrites the record, conditional on the stored seller
	// id matching p.SellerID.
	UpdateProduct(ctx context.Context, p *product.Product) error
	// DeleteProduct removes the record, conditional on the stored seller id.
	DeleteProduct(ctx context.Context, id, sellerID string) error
}
