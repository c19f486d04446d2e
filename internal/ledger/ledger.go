// Package ledger derives seller transactions from order history. Transactions
// are never persisted; every query recomputes them from the orders.
package ledger

import (
	"sort"
	"time"

	"github.com/example/marketplace-backend/internal/domain/order"
)

type Type string

const (
	TypeCredit Type = "credit"
	TypeRefund Type = "refund"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

type Transaction struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Type        Type      `json:"type"`
	Amount      int       `json:"amount"` // signed, minor currency units
	Gross       int       `json:"gross"`
	PlatformFee int       `json:"platform_fee"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Balance     int       `json:"balance"` // running balance up to this transaction, chronological
}

// PlatformFee is the marketplace's 10% cut of a gross order total,
// rounded half-up on the integer minor-unit amount.
func PlatformFee(total int) int {
	return (total + 5) / 10
}

// Build projects a seller's orders into a transaction list and balance.
//
// Fulfilled or fulfilling orders (delivered, processing, shipped) produce one
// credit of total minus the platform fee; cancelled or returned orders
// produce one full-total refund with the fee not reapplied. Orders in status
// "new" produce nothing. The returned list is sorted newest-first, but each
// transaction carries the running balance as of its position in chronological
// order.
//
// The returned balance is accumulated during the credit/refund pass itself.
// It is not read back from the running-balance walk, so the two agree unless
// an order contributes no transaction at all.
func Build(orders []*order.Order) ([]Transaction, int) {
	txns := make([]Transaction, 0, len(orders))
	balance := 0

	for _, o := range orders {
		if o.Revenue() {
			fee := PlatformFee(o.Total)
			amount := o.Total - fee
			status := StatusPending
			if o.Status == order.StatusDelivered {
				status = StatusCompleted
			}
			txns = append(txns, Transaction{
				ID:          o.ID + "-credit",
				OrderID:     o.ID,
				Type:        TypeCredit,
				Amount:      amount,
				Gross:       o.Total,
				PlatformFee: fee,
				Description: "Payment for order " + o.OrderNumber,
				Status:      status,
				Timestamp:   o.CreatedAt,
			})
			balance += amount
		}
		if o.Reversed() {
			txns = append(txns, Transaction{
				ID:          o.ID + "-refund",
				OrderID:     o.ID,
				Type:        TypeRefund,
				Amount:      -o.Total,
				Gross:       o.Total,
				Description: "Refund for order " + o.OrderNumber,
				Status:      StatusCompleted,
				Timestamp:   o.EffectiveUpdatedAt(),
			})
			balance -= o.Total
		}
	}

	// Newest first is the externally visible order.
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Timestamp.After(txns[j].Timestamp)
	})

	// Running balance accumulates oldest to newest, so walk the sorted list
	// from the back.
	running := 0
	for i := len(txns) - 1; i >= 0; i-- {
		running += txns[i].Amount
		txns[i].Balance = running
	}

	return txns, balance
}
