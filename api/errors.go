package api

import (
	"net/http"

	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/services"
	"github.com/pkg/errors"
)

func serviceStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeServiceError answers with the status matching err and a plain text body.
// Validation messages go out as is, anything else behind prefix.
func writeServiceError(w *middlewares.ResponseWriter, err error, prefix string) {
	status := serviceStatus(err)
	if status == http.StatusBadRequest {
		w.String(status, err.Error())
		return
	}
	w.String(status, prefix+err.Error())
}

// writeServiceJSONError is writeServiceError for the JSON endpoints.
func writeServiceJSONError(w *middlewares.ResponseWriter, err error, message string) {
	status := serviceStatus(err)
	if status == http.StatusInternalServerError {
		w.WriteJSON(status, nil, err, message)
		return
	}
	w.WriteJSON(status, nil, err, err.Error())
}
