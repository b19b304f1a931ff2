package handlers

import (
	"net/http"
	"strconv"
	"time"

	"mercator-hq/webstore/pkg/auth"
	"mercator-hq/webstore/pkg/cart"
)

// orderLineView is one line item of a listed order.
type orderLineView struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// orderView is one submitted order in the listing.
type orderView struct {
	OrderID   int64           `json:"orderId"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []orderLineView `json:"items"`
}

// orderPageView is the body of GET /orders.
type orderPageView struct {
	Orders     []orderView `json:"orders"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalCount int         `json:"totalCount"`
	TotalPages int         `json:"totalPages"`
}

// ListOrdersHandler handles GET /orders.
type ListOrdersHandler struct {
	service *cart.Service
}

// NewListOrdersHandler creates the orders listing handler.
func NewListOrdersHandler(service *cart.Service) *ListOrdersHandler {
	return &ListOrdersHandler{service: service}
}

// ServeHTTP lists the caller's submitted orders. Query parameters:
//
//   - sortOrder:    "date_asc" (default) or "date_desc"
//   - searchString: numeric values filter to that exact order ID;
//     anything else is ignored
//   - page:         1-based page number
func (h *ListOrdersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, statusResponse{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
		return
	}

	q := cart.ListQuery{
		SortOrder: r.URL.Query().Get("sortOrder"),
		Search:    r.URL.Query().Get("searchString"),
		Page:      1,
	}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		q.Page = p
	}

	page, err := h.service.ListSubmittedOrders(r.Context(), identity.UserID, q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := orderPageView{
		Orders:     make([]orderView, 0, len(page.Orders)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}
	for _, o := range page.Orders {
		ov := orderView{
			OrderID:   o.ID,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt,
			Items:     make([]orderLineView, 0, len(o.Items)),
		}
		for _, line := range o.Items {
			ov.Items = append(ov.Items, orderLineView{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}
		view.Orders = append(view.Orders, ov)
	}

	writeJSON(w, http.StatusOK, view)
}

// DeleteOrderHandler handles DELETE /orders/{id}. Admin only; the role
// check is applied where the route is registered.
type DeleteOrderHandler struct {
	service *cart.Service
}

// NewDeleteOrderHandler creates the order deletion handler.
func NewDeleteOrderHandler(service *cart.Service) *DeleteOrderHandler {
	return &DeleteOrderHandler{service: service}
}

// ServeHTTP deletes an order by ID.
func (h *DeleteOrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  http.StatusBadRequest,
			Message: "Invalid order ID",
		})
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Order deleted",
	})
}
