package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/health"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	okPing   = pingFunc(func(context.Context) error { return nil })
	downPing = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func newSigner(t *testing.T) *jwtx.Signer {
	t.Helper()
	kp, err := jwtx.GenerateKeyPair(2048)
	require.NoError(t, err)
	s, err := jwtx.NewSigner(kp)
	require.NoError(t, err)
	return s
}

func TestCheck(t *testing.T) {
	signer := newSigner(t)

	cases := []struct {
		name   string
		deps   Deps
		status string
	}{
		{"all ok", Deps{Store: okPing, Cache: okPing, Signer: signer}, dto.StatusReady},
		{"cache down", Deps{Store: okPing, Cache: downPing, Signer: signer}, dto.StatusDegraded},
		{"store down", Deps{Store: downPing, Cache: okPing, Signer: signer}, dto.StatusUnavailable},
		{"no signer", Deps{Store: okPing, Cache: okPing}, dto.StatusUnavailable},
		{"no cache", Deps{Store: okPing, Signer: signer}, dto.StatusReady},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := NewHealthService(tc.deps).Check(context.Background())
			assert.Equal(t, tc.status, resp.Status)
			assert.Len(t, resp.Components, 3)
		})
	}

	resp := NewHealthService(Deps{Store: okPing, Signer: signer}).Check(context.Background())
	assert.Equal(t, signer.KID(), resp.ActiveKeyID)
	assert.Equal(t, dto.StatusDisabled, resp.Components["cache"].Status)
}
