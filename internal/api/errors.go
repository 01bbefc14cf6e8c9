package api

import (
	"errors"
	"net/http"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/contact"
	"signalcraft-be/internal/design"
	"signalcraft-be/internal/logger"
	"signalcraft-be/internal/order"
	"signalcraft-be/internal/product"
	"signalcraft-be/internal/upload"
	"signalcraft-be/internal/utils"

	"go.uber.org/zap"
)

// ValidationError is a rejected request body. Fields maps a json path to the
// rule it broke.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type validationBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrExchangeFailed):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden), errors.Is(err, order.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, design.ErrDesignNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, contact.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, product.ErrDuplicateSKU):
		return http.StatusConflict
	case errors.Is(err, product.ErrNoFields),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, upload.ErrInvalidCategory):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError maps err onto a status. Unrecognized errors are logged and
// answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		utils.WriteJSON(w, http.StatusBadRequest, validationBody{Error: verr.Message, Fields: verr.Fields})
		return
	}

	status := statusFor(err)
	switch {
	case errors.Is(err, upload.ErrNotConfigured), errors.Is(err, auth.ErrNotConfigured):
		utils.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	case status == http.StatusInternalServerError:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "internal server error", status)
		return
	}

	message := err.Error()
	if errors.Is(err, auth.ErrExchangeFailed) {
		message = auth.ErrExchangeFailed.Error()
	}
	utils.WriteJSONError(w, message, status)
}
