package api

import (
	"net/http"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/design"
	"signalcraft-be/internal/order"
	"signalcraft-be/internal/utils"
)

// Designs inherit access from their order: reading the order with the
// caller's identity enforces ownership for non-admins.

func (h *Handler) listDesigns(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID", order.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.Orders.GetOrder(r.Context(), orderID, auth.CallerFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}

	designs, err := h.Designs.ListDesigns(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if designs == nil {
		designs = []design.Design{}
	}
	utils.WriteJSON(w, http.StatusOK, designs)
}

func (h *Handler) createDesign(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID", order.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createDesignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.Orders.GetOrder(r.Context(), orderID, auth.CallerFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.Designs.CreateDesign(r.Context(), orderID, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, d)
}

// designForCaller loads the design and checks the caller may see its order.
func (h *Handler) designForCaller(r *http.Request) (*design.Design, error) {
	designID, err := pathID(r, "designID", design.ErrDesignNotFound)
	if err != nil {
		return nil, err
	}
	d, err := h.Designs.GetDesign(r.Context(), designID)
	if err != nil {
		return nil, err
	}
	if _, err := h.Orders.GetOrder(r.Context(), d.OrderID, auth.CallerFrom(r.Context())); err != nil {
		return nil, err
	}
	return d, nil
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	d, err := h.designForCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reviews, err := h.Designs.ListReviews(r.Context(), d.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []design.Review{}
	}
	utils.WriteJSON(w, http.StatusOK, reviews)
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.designForCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	review, err := h.Designs.CreateReview(r.Context(), d.ID, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, review)
}
