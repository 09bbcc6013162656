package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field es un alias para no importar zap en cada paquete.
type Field = zap.Field

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// ─── Dominio ───

// TenantID identifica al tenant dueño del recurso.
func TenantID(v string) zap.Field { return zap.String("tenant_id", v) }

// UserID identifica al usuario autenticado (nunca el email en prod).
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// ClientID es el client_id público de OAuth2; no es secreto.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// GrantType es el grant_type del token endpoint.
func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

// APIKeyID es el id de fila de la API key (nunca la key ni su prefijo completo).
func APIKeyID(v string) zap.Field { return zap.String("api_key_id", v) }

// AuthMethod: "session" | "api_key".
func AuthMethod(v string) zap.Field { return zap.String("auth_method", v) }

// KID es el key id de la llave de firma.
func KID(v string) zap.Field { return zap.String("kid", v) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field { return zap.Error(err) }

// ─── Genéricos ───

func Count(v int) zap.Field { return zap.Int("count", v) }
func Int64(key string, v int64) zap.Field { return zap.Int64(key, v) }
func ID(v string) zap.Field { return zap.String("id", v) }
func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
