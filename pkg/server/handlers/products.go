package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mercator-hq/webstore/pkg/catalog"
)

// productView is one catalog entry on the wire.
type productView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	PhotoURL   string `json:"photoUrl,omitempty"`
	Available  bool   `json:"available"`
}

// productPageView is the body of GET /products.
type productPageView struct {
	Products   []productView `json:"products"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalCount int           `json:"totalCount"`
}

func toProductView(p *catalog.Product) productView {
	return productView{
		ID:         p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		PhotoURL:   p.PhotoURL,
		Available:  p.Available,
	}
}

// ListProductsHandler handles GET /products.
type ListProductsHandler struct {
	store catalog.Store
}

// NewListProductsHandler creates the catalog listing handler.
func NewListProductsHandler(store catalog.Store) *ListProductsHandler {
	return &ListProductsHandler{store: store}
}

// ServeHTTP returns one page of the catalog.
func (h *ListProductsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	result, err := h.store.ListProducts(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := productPageView{
		Products:   make([]productView, 0, len(result.Products)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalCount: result.TotalCount,
	}
	for _, p := range result.Products {
		view.Products = append(view.Products, toProductView(p))
	}

	writeJSON(w, http.StatusOK, view)
}

// GetProductHandler handles GET /products/{id}.
type GetProductHandler struct {
	store catalog.Store
}

// NewGetProductHandler creates the single-product handler.
func NewGetProductHandler(store catalog.Store) *GetProductHandler {
	return &GetProductHandler{store: store}
}

// ServeHTTP returns one product by ID.
func (h *GetProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  http.StatusBadRequest,
			Message: "Invalid product ID",
		})
		return
	}

	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, statusResponse{
			Status:  http.StatusNotFound,
			Message: "Product not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, toProductView(p))
}

// SaveProductHandler handles POST /products. Requires the admin or
// seller role; the role check is applied where the route is registered.
type SaveProductHandler struct {
	store catalog.Store
}

// NewSaveProductHandler creates the product upsert handler.
func NewSaveProductHandler(store catalog.Store) *SaveProductHandler {
	return &SaveProductHandler{store: store}
}

// ServeHTTP inserts or updates a product. A zero ID inserts; the
// assigned ID is returned in the response.
func (h *SaveProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req productView
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  http.StatusBadRequest,
			Message: "Product name is required",
		})
		return
	}
	if req.PriceCents < 0 {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  http.StatusBadRequest,
			Message: "Product price cannot be negative",
		})
		return
	}

	p := &catalog.Product{
		ID:         req.ID,
		Name:       req.Name,
		PriceCents: req.PriceCents,
		PhotoURL:   req.PhotoURL,
		Available:  req.Available,
	}
	if err := h.store.SaveProduct(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductView(p))
}

// DeleteProductHandler handles DELETE /products/{id}. Requires the admin
// or seller role.
type DeleteProductHandler struct {
	store catalog.Store
}

// NewDeleteProductHandler creates the product deletion handler.
func NewDeleteProductHandler(store catalog.Store) *DeleteProductHandler {
	return &DeleteProductHandler{store: store}
}

// ServeHTTP removes a product from the catalog.
func (h *DeleteProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  http.StatusBadRequest,
			Message: "Invalid product ID",
		})
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Product deleted",
	})
}
