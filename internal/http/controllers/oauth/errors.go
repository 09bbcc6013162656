package oauth

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
)

// writeError escribe ProtocolError con headers no-store y el resto como AppError.
func writeError(w http.ResponseWriter, err error) {
	var pe *httperrors.ProtocolError
	if errors.As(err, &pe) {
		httperrors.WriteProtocolError(w, pe)
		return
	}
	httperrors.WriteError(w, err)
}

func protocol(status int, code, desc string) *httperrors.ProtocolError {
	return httperrors.Protocol(status, code, desc)
}

var errServer = protocol(http.StatusInternalServerError, httperrors.CodeServerError, "")
