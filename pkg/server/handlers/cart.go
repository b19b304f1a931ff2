package handlers

import (
	"encoding/json"
	"net/http"

	"mercator-hq/webstore/pkg/auth"
	"mercator-hq/webstore/pkg/cart"
	"mercator-hq/webstore/pkg/catalog"
)

// addItemRequest is the body of POST /cart/items.
type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// cartLineView is one priced line of the cart view.
type cartLineView struct {
	ProductID  int64  `json:"productId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
	TotalCents int64  `json:"totalCents"`
}

// cartView is the body of GET /cart.
type cartView struct {
	CartID     int64          `json:"cartId"`
	Status     string         `json:"status"`
	Items      []cartLineView `json:"items"`
	TotalCents int64          `json:"totalCents"`
}

// AddItemHandler handles POST /cart/items.
type AddItemHandler struct {
	service *cart.Service
}

// NewAddItemHandler creates the add-to-cart handler.
func NewAddItemHandler(service *cart.Service) *AddItemHandler {
	return &AddItemHandler{service: service}
}

// ServeHTTP merges a line item into the caller's open cart.
func (h *AddItemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, statusResponse{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
		return
	}

	if _, err := h.service.AddItem(r.Context(), identity.UserID, req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Product added to cart successfully.",
	})
}

// CheckoutHandler handles POST /cart/checkout.
type CheckoutHandler struct {
	service *cart.Service
}

// NewCheckoutHandler creates the checkout handler.
func NewCheckoutHandler(service *cart.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// ServeHTTP submits the caller's open cart and redirects to the orders
// view. A checkout with no open cart, including a retried checkout whose
// cart is already submitted, takes the same redirect without submitting
// anything.
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, statusResponse{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
		return
	}

	_, err := h.service.Checkout(r.Context(), identity.UserID)
	if err != nil && err != cart.ErrNothingToSubmit {
		writeError(w, r, err)
		return
	}

	http.Redirect(w, r, "/orders", http.StatusSeeOther)
}

// CartViewHandler handles GET /cart.
type CartViewHandler struct {
	service *cart.Service
	catalog catalog.Lookup
}

// NewCartViewHandler creates the cart view handler.
func NewCartViewHandler(service *cart.Service, lookup catalog.Lookup) *CartViewHandler {
	return &CartViewHandler{service: service, catalog: lookup}
}

// ServeHTTP returns the caller's open cart with per-line and total
// prices. An empty view is returned when the user has no open cart.
func (h *CartViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, statusResponse{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
		return
	}

	c, err := h.service.OpenCart(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusOK, cartView{Items: []cartLineView{}})
		return
	}

	view := cartView{
		CartID: c.ID,
		Status: string(c.Status),
		Items:  make([]cartLineView, 0, len(c.Items)),
	}

	for _, line := range c.Items {
		lv := cartLineView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		// A product deleted from the catalog after it was added still
		// shows up in the cart, just without a price.
		if p, err := h.catalog.GetProduct(r.Context(), line.ProductID); err == nil && p != nil {
			lv.Name = p.Name
			lv.PriceCents = p.PriceCents
			lv.TotalCents = p.PriceCents * int64(line.Quantity)
		}
		view.TotalCents += lv.TotalCents
		view.Items = append(view.Items, lv)
	}

	writeJSON(w, http.StatusOK, view)
}
