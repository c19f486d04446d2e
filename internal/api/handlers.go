package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/marketplace-backend/internal/analytics"
	"github.com/example/marketplace-backend/internal/api/middleware"
	"github.com/example/marketplace-backend/internal/auth"
	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/product"
	"github.com/example/marketplace-backend/internal/seller"
)

type Handlers struct {
	sellerSvc *seller.Service
}

func NewHandlers(sellerSvc *seller.Service) *Handlers {
	return &Handlers{sellerSvc: sellerSvc}
}

// callerSellerID resolves which seller the request acts for. Sellers act as
// themselves; admins may act for any seller via the seller_id query param.
func callerSellerID(r *http.Request) string {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return ""
	}
	if claims.Role == auth.RoleAdmin {
		if sid := r.URL.Query().Get("seller_id"); sid != "" {
			return sid
		}
	}
	return claims.Subject
}

// Order Handlers

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in seller.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondFailure(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	in.BuyerID = middleware.GetUserID(r.Context())

	o, err := h.sellerSvc.CreateOrder(r.Context(), in)
	if err != nil {
		respondFailure(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "order": o})
}

// ManageOrder handles POST /seller/orders/{id}/{action}.
func (h *Handlers) ManageOrder(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/seller/orders/")
	orderID, action, ok := strings.Cut(rest, "/")
	if !ok || orderID == "" {
		respondFailure(w, http.StatusBadRequest, "expected /seller/orders/{id}/{action}")
		return
	}

	var req struct {
		TrackingNumber string `json:"tracking_number"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	o, err := h.sellerSvc.ManageOrder(r.Context(), order.Action(action), orderID, callerSellerID(r), req.TrackingNumber)
	if err != nil {
		respondFailure(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

// Product Handlers

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondFailure(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	p.SellerID = callerSellerID(r)

	created, err := h.sellerSvc.CreateProduct(r.Context(), &p)
	if err != nil {
		respondFailure(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "product": created})
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/seller/products/")

	var u product.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		respondFailure(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	updated, err := h.sellerSvc.UpdateProduct(r.Context(), id, callerSellerID(r), u)
	if err != nil {
		respondFailure(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "product": updated})
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/seller/products/")

	if err := h.sellerSvc.DeleteProduct(r.Context(), id, callerSellerID(r)); err != nil {
		respondFailure(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Derived views

func (h *Handlers) GetTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondFailure(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	page, err := h.sellerSvc.Transactions(r.Context(), callerSellerID(r), int32(limit), r.URL.Query().Get("next_token"))
	if err != nil {
		respondFailure(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"transactions":       page.Transactions,
		"total_transactions": page.TotalTransactions,
		"current_balance":    page.CurrentBalance,
		"next_token":         page.NextToken,
	})
}

func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	period := analytics.Period(r.URL.Query().Get("period"))

	summary, err := h.sellerSvc.Analytics(r.Context(), callerSellerID(r), period)
	if err != nil {
		respondFailure(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "analytics": summary})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondFailure(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "error": message})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, seller.ErrInvalidInput), errors.Is(err, product.ErrInvalidInput), errors.Is(err, order.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrNotFound), errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, seller.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, order.ErrTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
