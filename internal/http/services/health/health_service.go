// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"time"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/health"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Pinger es cualquier dependencia con Ping (store, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Store   Pinger // crítico
	Cache   Pinger // no crítico: sin cache sólo fallan authorize/consent
	Signer  *jwtx.Signer
	Version string
	Timeout time.Duration
}

type healthService struct {
	deps Deps
}

func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("health"), logger.Op("Check"))

	resp := dto.HealthResponse{
		Components: make(map[string]dto.ComponentStatus, 3),
		Version:    s.deps.Version,
		Timestamp:  time.Now().UTC(),
	}
	critical, degraded := false, false

	// 1) Store (crítico)
	st := s.ping(ctx, s.deps.Store)
	if st.Status == dto.StatusError {
		critical = true
		log.Error("store unavailable", logger.String("detail", st.Message))
	}
	resp.Components["store"] = st

	// 2) Keystore (crítico)
	if s.deps.Signer == nil {
		resp.Components["keystore"] = dto.ComponentStatus{Status: dto.StatusError, Message: "signer not initialized"}
		critical = true
	} else if err := s.checkKeystore(); err != nil {
		resp.Components["keystore"] = dto.ComponentStatus{Status: dto.StatusError, Message: err.Error()}
		critical = true
		log.Error("keystore check failed", logger.Err(err))
	} else {
		resp.Components["keystore"] = dto.ComponentStatus{Status: dto.StatusOK}
		resp.ActiveKeyID = s.deps.Signer.KID()
	}

	// 3) Cache (no crítico)
	st = s.ping(ctx, s.deps.Cache)
	if st.Status == dto.StatusError {
		degraded = true
		log.Warn("cache unavailable", logger.String("detail", st.Message))
	}
	resp.Components["cache"] = st

	switch {
	case critical:
		resp.Status = dto.StatusUnavailable
	case degraded:
		resp.Status = dto.StatusDegraded
	default:
		resp.Status = dto.StatusReady
	}
	return resp
}

func (s *healthService) ping(ctx context.Context, p Pinger) dto.ComponentStatus {
	if p == nil {
		return dto.ComponentStatus{Status: dto.StatusDisabled}
	}
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return dto.ComponentStatus{Status: dto.StatusError, Message: fmt.Sprintf("unavailable: %v", err)}
	}
	return dto.ComponentStatus{Status: dto.StatusOK}
}

// checkKeystore firma y verifica un token efímero con la llave activa.
func (s *healthService) checkKeystore() error {
	now := time.Now().UTC()
	signed, err := s.deps.Signer.Sign(jwtv5.MapClaims{
		"sub": "selfcheck",
		"aud": "health",
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	})
	if err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}
	if _, err := s.deps.Signer.Verify(signed); err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	return nil
}
