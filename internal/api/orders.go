package api

import (
	"net/http"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/order"
	"signalcraft-be/internal/utils"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.Orders.ListOrders(r.Context(), order.ListFilter{
		Status: q.Get("status"),
		Type:   q.Get("type"),
	}, auth.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.Orders.CreateOrder(r.Context(), req.toInput(), auth.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID", order.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.Orders.GetOrder(r.Context(), id, auth.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID", order.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req orderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	status, _ := order.ParseStatus(req.Status)

	o, err := h.Orders.UpdateStatus(r.Context(), id, status, auth.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) updateShipping(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID", order.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req shippingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.Orders.UpdateShipping(r.Context(), id, req.toUpdate(), auth.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) addOrderEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID", order.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req orderEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ev, err := h.Orders.AddEvent(r.Context(), id, req.toInput(), auth.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, ev)
}

func (h *Handler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID", order.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req paymentStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	status, _ := order.ParsePaymentStatus(req.Status)

	o, err := h.Orders.UpdatePaymentStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
