package api

import (
	"net/http"

	"signalcraft-be/internal/product"
	"signalcraft-be/internal/utils"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) listAllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.ListAllProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeProducts(w, products)
}

func writeProducts(w http.ResponseWriter, products []product.Product) {
	if products == nil {
		products = []product.Product{}
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID", product.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Products.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Products.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID", product.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Products.UpdateProduct(r.Context(), id, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID", product.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Products.DeactivateProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}
