package order

import "time"

const EventStatusChanged = "OrderStatusChanged"

// StatusChanged is published after a successful lifecycle transition.
type StatusChanged struct {
	OrderID        string    `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	SellerID       string    `json:"seller_id"`
	BuyerID        string    `json:"buyer_id"`
	CustomerEmail  string    `json:"customer_email,omitempty"`
	From           Status    `json:"from"`
	To             Status    `json:"to"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}
