package api

import (
	"net/http"

	"signalcraft-be/internal/contact"
	"signalcraft-be/internal/utils"
)

func (h *Handler) createContactMessage(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.Contact.CreateMessage(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) listContactMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Contact.ListMessages(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []contact.Message{}
	}
	utils.WriteJSON(w, http.StatusOK, msgs)
}

func (h *Handler) updateContactMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageID", contact.ErrMessageNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req contactStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	status, _ := contact.ParseStatus(req.Status)

	msg, err := h.Contact.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, msg)
}
