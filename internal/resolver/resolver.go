// Package resolver dispatches GraphQL field invocations coming from the API
// gateway to the seller service. Every failure is converted into a
// {success:false, error} payload; nothing propagates as an unhandled fault.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/marketplace-backend/internal/analytics"
	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/ledger"
	"github.com/example/marketplace-backend/internal/seller"
)

// Event is the invocation envelope the gateway sends to the resolver.
type Event struct {
	Info struct {
		FieldName string `json:"fieldName"`
	} `json:"info"`
	Arguments json.RawMessage `json:"arguments"`
}

type ManageOrderArgs struct {
	Action         string `json:"action"`
	OrderID        string `json:"orderId"`
	SellerID       string `json:"sellerId"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

type ManageProductArgs struct {
	Action    string          `json:"action"`
	SellerID  string          `json:"sellerId"`
	ProductID string          `json:"productId,omitempty"`
	Product   json.RawMessage `json:"product,omitempty"`
}

type TransactionsArgs struct {
	SellerID  string `json:"sellerId"`
	Limit     int32  `json:"limit,omitempty"`
	NextToken string `json:"nextToken,omitempty"`
}

type AnalyticsArgs struct {
	SellerID string `json:"sellerId"`
	Period   string `json:"period,omitempty"`
}

type OrderResponse struct {
	Success bool         `json:"success"`
	Order   *order.Order `json:"order,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type ProductResponse struct {
	Success bool             `json:"success"`
	Product *product.Product `json:"product,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type TransactionsResponse struct {
	Success           bool                 `json:"success"`
	Transactions      []ledger.Transaction `json:"transactions"`
	TotalTransactions int                  `json:"totalTransactions"`
	CurrentBalance    int                  `json:"currentBalance"`
	NextToken         string               `json:"nextToken,omitempty"`
	Error             string               `json:"error,omitempty"`
}

type AnalyticsResponse struct {
	Success   bool               `json:"success"`
	Analytics *analytics.Summary `json:"analytics,omitempty"`
	Error     string             `json:"error,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Resolver struct {
	sellerSvc *seller.Service
}

func New(sellerSvc *seller.Service) *Resolver {
	return &Resolver{sellerSvc: sellerSvc}
}

// Handle dispatches one gateway invocation. The returned value is always a
// response payload; the error return is always nil so the gateway never sees
// an unhandled fault.
func (r *Resolver) Handle(ctx context.Context, event Event) (any, error) {
	switch event.Info.FieldName {
	case "manageOrder":
		return r.manageOrder(ctx, event.Arguments), nil
	case "createOrder":
		return r.createOrder(ctx, event.Arguments), nil
	case "manageProduct":
		return r.manageProduct(ctx, event.Arguments), nil
	case "getSellerTransactions":
		return r.transactions(ctx, event.Arguments), nil
	case "getSellerAnalytics":
		return r.analytics(ctx, event.Arguments), nil
	default:
		log.Printf("[Resolver] Unknown field: %s", event.Info.FieldName)
		return ErrorResponse{Error: fmt.Sprintf("unknown field %q", event.Info.FieldName)}, nil
	}
}

func (r *Resolver) manageOrder(ctx context.Context, args json.RawMessage) OrderResponse {
	var a ManageOrderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return OrderResponse{Error: "malformed arguments: " + err.Error()}
	}

	o, err := r.sellerSvc.ManageOrder(ctx, order.Action(a.Action), a.OrderID, a.SellerID, a.TrackingNumber)
	if err != nil {
		log.Printf("[Resolver] manageOrder %s on %s failed: %v", a.Action, a.OrderID, err)
		return OrderResponse{Error: err.Error()}
	}
	return OrderResponse{Success: true, Order: o}
}

func (r *Resolver) createOrder(ctx context.Context, args json.RawMessage) OrderResponse {
	var in seller.CreateOrderInput
	if err := json.Unmarshal(args, &in); err != nil {
		return OrderResponse{Error: "malformed arguments: " + err.Error()}
	}

	o, err := r.sellerSvc.CreateOrder(ctx, in)
	if err != nil {
		log.Printf("[Resolver] createOrder failed: %v", err)
		return OrderResponse{Error: err.Error()}
	}
	return OrderResponse{Success: true, Order: o}
}

func (r *Resolver) manageProduct(ctx context.Context, args json.RawMessage) ProductResponse {
	var a ManageProductArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ProductResponse{Error: "malformed arguments: " + err.Error()}
	}

	switch a.Action {
	case "create":
		var p product.Product
		if err := json.Unmarshal(a.Product, &p); err != nil {
			return ProductResponse{Error: "malformed product: " + err.Error()}
		}
		p.SellerID = a.SellerID
		created, err := r.sellerSvc.CreateProduct(ctx, &p)
		if err != nil {
			return ProductResponse{Error: err.Error()}
		}
		return ProductResponse{Success: true, Product: created}

	case "update":
		var u product.Update
		if err := json.Unmarshal(a.Product, &u); err != nil {
			return ProductResponse{Error: "malformed product: " + err.Error()}
		}
		updated, err := r.sellerSvc.UpdateProduct(ctx, a.ProductID, a.SellerID, u)
		if err != nil {
			return ProductResponse{Error: err.Error()}
		}
		return ProductResponse{Success: true, Product: updated}

	case "delete":
		if err := r.sellerSvc.DeleteProduct(ctx, a.ProductID, a.SellerID); err != nil {
			return ProductResponse{Error: err.Error()}
		}
		return ProductResponse{Success: true}

	default:
		return ProductResponse{Error: fmt.Sprintf("unknown product action %q", a.Action)}
	}
}

func (r *Resolver) transactions(ctx context.Context, args json.RawMessage) TransactionsResponse {
	var a TransactionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return TransactionsResponse{Error: "malformed arguments: " + err.Error()}
	}

	page, err := r.sellerSvc.Transactions(ctx, a.SellerID, a.Limit, a.NextToken)
	if err != nil {
		log.Printf("[Resolver] getSellerTransactions for %s failed: %v", a.SellerID, err)
		return TransactionsResponse{Error: err.Error()}
	}
	return TransactionsResponse{
		Success:           true,
		Transactions:      page.Transactions,
		TotalTransactions: page.TotalTransactions,
		CurrentBalance:    page.CurrentBalance,
		NextToken:         page.NextToken,
	}
}

func (r *Resolver) analytics(ctx context.Context, args json.RawMessage) AnalyticsResponse {
	var a AnalyticsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return AnalyticsResponse{Error: "malformed arguments: " + err.Error()}
	}

	summary, err := r.sellerSvc.Analytics(ctx, a.SellerID, analytics.Period(a.Period))
	if err != nil {
		log.Printf("[Resolver] getSellerAnalytics for %s failed: %v", a.SellerID, err)
		return AnalyticsResponse{Error: err.Error()}
	}
	return AnalyticsResponse{Success: true, Analytics: summary}
}
