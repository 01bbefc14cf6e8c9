package api

import (
	"net/http"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/utils"
)

func (h *Handler) presignUpload(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	// uploads scoped to an order require access to that order
	if req.OrderID != nil {
		if _, err := h.Orders.GetOrder(r.Context(), *req.OrderID, auth.CallerFrom(r.Context())); err != nil {
			writeError(w, r, err)
			return
		}
	}

	out, err := h.Uploads.CreatePresignedURL(r.Context(), req.toRequest())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}
