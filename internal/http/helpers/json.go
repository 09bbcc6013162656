package helpers

import (
	"encoding/json"
	stdErrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authflow/internal/http/errors"
)

// DefaultMaxBody es el límite de body JSON (1MB).
const DefaultMaxBody int64 = 1 << 20

// ReadJSON decodifica el body (máx 1MB) rechazando campos desconocidos.
// Devuelve un *errors.AppError listo para WriteError.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		return errors.ErrBadRequest.WithDetail("Content-Type must be application/json")
	}

	r.Body = http.MaxBytesReader(w, r.Body, DefaultMaxBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case stdErrors.As(err, &mbe):
			return errors.ErrBodyTooLarge
		case stdErrors.Is(err, io.EOF):
			return errors.ErrInvalidJSON.WithDetail("empty body")
		default:
			return errors.ErrInvalidJSON.WithCause(err)
		}
	}
	return nil
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteNoStoreJSON agrega los headers de respuestas con credenciales.
func WriteNoStoreJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	WriteJSON(w, status, v)
}
