package errors

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// WriteError serializa err como {error, error_description[, detail]}.
// En 5xx el detalle y la causa nunca salen al cliente.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{Error: appErr.Code, Description: appErr.Message}
	if appErr.HTTPStatus < 500 {
		resp.Detail = appErr.Detail
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
