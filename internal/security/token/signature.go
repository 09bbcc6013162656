package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// Headers de payloads salientes firmados (webhooks).
const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
)

// DefaultSignatureWindow es la tolerancia de reloj para X-Timestamp.
const DefaultSignatureWindow = 5 * time.Minute

var (
	ErrSignatureMissing   = errors.New("signature: missing header")
	ErrSignatureTimestamp = errors.New("signature: timestamp outside window")
	ErrSignatureMismatch  = errors.New("signature: mismatch")
)

// GenerateWebhookSecret: 32 bytes hex.
func GenerateWebhookSecret() (string, error) {
	return GenerateOpaqueHex(32)
}

// SignPayload = hex(HMAC-SHA256(timestamp + "." + body, secret)).
func SignPayload(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignRequest firma body con now y setea X-Signature / X-Timestamp.
func SignRequest(h http.Header, secret string, body []byte, now time.Time) {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	h.Set(HeaderTimestamp, ts)
	h.Set(HeaderSignature, SignPayload(secret, ts, body))
}

// VerifyPayloadSignature valida ventana temporal (ms) y firma en tiempo constante.
// window <= 0 usa DefaultSignatureWindow.
func VerifyPayloadSignature(secret, signature, timestamp string, body []byte, now time.Time, window time.Duration) error {
	if signature == "" || timestamp == "" {
		return ErrSignatureMissing
	}
	if window <= 0 {
		window = DefaultSignatureWindow
	}
	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrSignatureTimestamp
	}
	age := now.Sub(time.UnixMilli(ms))
	if age > window || age < -window {
		return ErrSignatureTimestamp
	}
	expected := SignPayload(secret, timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// VerifyRequest lee los headers y delega en VerifyPayloadSignature.
func VerifyRequest(h http.Header, secret string, body []byte, now time.Time) error {
	return VerifyPayloadSignature(secret, h.Get(HeaderSignature), h.Get(HeaderTimestamp), body, now, DefaultSignatureWindow)
}
