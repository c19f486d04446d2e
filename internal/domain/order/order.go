package order

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

// Action is a seller-initiated lifecycle action on an order.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionShip    Action = "ship"
	ActionDeliver Action = "deliver"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrUnknownAction = errors.New("unknown order action")
	ErrTransition    = errors.New("order status transition not permitted")
)

// transitions maps each action to the status it requires and the status it
// produces. No action skips a state or moves backward; reject and return are
// the only reversal paths.
var transitions = map[Action]struct {
	From Status
	To   Status
}{
	ActionAccept:  {From: StatusNew, To: StatusProcessing},
	ActionReject:  {From: StatusNew, To: StatusCancelled},
	ActionShip:    {From: StatusProcessing, To: StatusShipped},
	ActionDeliver: {From: StatusShipped, To: StatusDelivered},
}

// NextStatus resolves the status an action moves an order into.
// Unknown actions fail with ErrUnknownAction; actions applied from the wrong
// status fail with ErrTransition naming the expected status.
func NextStatus(action Action, current Status) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if current != t.From {
		return "", fmt.Errorf("%w: %s requires status %q, order is %q", ErrTransition, action, t.From, current)
	}
	return t.To, nil
}

type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int    `json:"price"` // unit price, minor currency units
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID             string     `json:"id"`
	SellerID       string     `json:"seller_id"`
	BuyerID        string     `json:"buyer_id"`
	OrderNumber    string     `json:"order_number"`
	CustomerEmail  string     `json:"customer_email,omitempty"`
	Status         Status     `json:"status"`
	Items          []LineItem `json:"items"`
	Total          int        `json:"total"` // minor currency units
	TrackingNumber string     `json:"tracking_number,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Revenue reports whether the order counts toward seller revenue.
func (o *Order) Revenue() bool {
	switch o.Status {
	case StatusDelivered, StatusProcessing, StatusShipped:
		return true
	}
	return false
}

// Reversed reports whether the order's gross total has been reversed.
func (o *Order) Reversed() bool {
	return o.Status == StatusCancelled || o.Status == StatusReturned
}

// EffectiveUpdatedAt falls back to the creation time when the order has
// never been updated.
func (o *Order) EffectiveUpdatedAt() time.Time {
	if o.UpdatedAt.IsZero() {
		return o.CreatedAt
	}
	return o.UpdatedAt
}
