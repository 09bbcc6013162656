package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createReq struct {
	Name         string   `json:"name" validate:"required,max=100"`
	RedirectURIs []string `json:"redirectUris" validate:"required,min=1,dive,redirect_uri"`
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name   string
		ct     string
		body   string
		status int
	}{
		{"ok", "application/json", `{"name":"a","redirectUris":["https://x"]}`, 0},
		{"wrong content type", "text/plain", `{}`, http.StatusBadRequest},
		{"unknown field", "application/json", `{"nombre":"a"}`, http.StatusBadRequest},
		{"empty", "application/json", ``, http.StatusBadRequest},
		{"too large", "application/json", `{"name":"` + strings.Repeat("a", int(DefaultMaxBody)) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.ct)
			var v createReq
			err := ReadJSON(httptest.NewRecorder(), r, &v)
			if tt.status == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.status, errors.FromError(err).HTTPStatus)
		})
	}
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(createReq{Name: "app", RedirectURIs: []string{"https://app.example.com/cb"}}))

	err := ValidateStruct(createReq{Name: "app"})
	require.Error(t, err)
	assert.Contains(t, errors.FromError(err).Detail, "redirectUris")

	err = ValidateStruct(createReq{Name: "app", RedirectURIs: []string{"http://evil.example.com/cb"}})
	require.Error(t, err)
	assert.Contains(t, errors.FromError(err).Detail, "redirect_uri")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "10.0.0.9", ClientIP(r, false))
	assert.Equal(t, "203.0.113.7", ClientIP(r, true))
}
