// Package analytics computes per-seller sales summaries. Summaries are a pure
// projection of order history, recomputed on every request.
package analytics

import (
	"sort"
	"time"

	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/ledger"
)

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   int    `json:"revenue"`
}

type Summary struct {
	Period            Period               `json:"period"`
	TotalOrders       int                  `json:"total_orders"`
	TotalRevenue      int                  `json:"total_revenue"`
	PlatformFee       int                  `json:"platform_fee"`
	NetEarnings       int                  `json:"net_earnings"`
	AverageOrderValue int                  `json:"average_order_value"`
	OrdersByStatus    map[order.Status]int `json:"orders_by_status"`
	RevenueByStatus   map[string]int       `json:"revenue_by_status"`
	TopProducts       []TopProduct         `json:"top_products"`
}

const topProductLimit = 5

// windowStart returns the inclusive lower bound for order creation times, or
// the zero time for the unbounded period.
func windowStart(p Period, now time.Time) time.Time {
	switch p {
	case PeriodToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// Summarize buckets a seller's orders by status and computes revenue, fees
// and top products for the requested period.
func Summarize(orders []*order.Order, p Period, now time.Time) *Summary {
	s := &Summary{
		Period: p,
		OrdersByStatus: map[order.Status]int{
			order.StatusNew:        0,
			order.StatusProcessing: 0,
			order.StatusShipped:    0,
			order.StatusDelivered:  0,
			order.StatusCancelled:  0,
			order.StatusReturned:   0,
		},
		RevenueByStatus: map[string]int{
			"delivered":  0,
			"processing": 0,
			"cancelled":  0,
		},
		TopProducts: []TopProduct{},
	}

	start := windowStart(p, now)

	products := make(map[string]*TopProduct)
	var productOrder []string

	for _, o := range orders {
		if !start.IsZero() && o.CreatedAt.Before(start) {
			continue
		}
		s.TotalOrders++
		s.OrdersByStatus[o.Status]++

		switch o.Status {
		case order.StatusDelivered:
			s.RevenueByStatus["delivered"] += o.Total
		case order.StatusProcessing, order.StatusShipped:
			s.RevenueByStatus["processing"] += o.Total
		case order.StatusCancelled, order.StatusReturned:
			s.RevenueByStatus["cancelled"] += o.Total
		}

		if o.Revenue() {
			s.TotalRevenue += o.Total
		}

		for _, item := range o.Items {
			agg, ok := products[item.ProductID]
			if !ok {
				agg = &TopProduct{ProductID: item.ProductID, Name: item.Name}
				products[item.ProductID] = agg
				productOrder = append(productOrder, item.ProductID)
			}
			agg.Quantity += item.Quantity
			agg.Revenue += item.Price * item.Quantity
		}
	}

	s.PlatformFee = ledger.PlatformFee(s.TotalRevenue)
	s.NetEarnings = s.TotalRevenue - s.PlatformFee
	if s.TotalOrders > 0 {
		s.AverageOrderValue = (s.TotalRevenue + s.TotalOrders/2) / s.TotalOrders
	}

	ranked := make([]TopProduct, 0, len(productOrder))
	for _, id := range productOrder {
		ranked = append(ranked, *products[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})
	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}
	s.TopProducts = ranked

	return s
}
