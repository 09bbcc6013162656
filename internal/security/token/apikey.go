package tokens

import "strings"

// APIKeyPrefix es el prefijo que permite al gate distinguir API keys de JWTs.
const APIKeyPrefix = "ak_live_"

// displayPrefixLen: caracteres visibles en listados ("ak_live_" + 4 hex).
const displayPrefixLen = 12

// GenerateAPIKey devuelve la key (mostrar una sola vez), su hash y el prefijo visible.
func GenerateAPIKey() (key, keyHash, keyPrefix string, err error) {
	body, err := GenerateOpaqueHex(32)
	if err != nil {
		return "", "", "", err
	}
	key = APIKeyPrefix + body
	return key, HashSecret(key), key[:displayPrefixLen], nil
}

// LooksLikeAPIKey indica si el bearer sigue la convención de API keys.
func LooksLikeAPIKey(bearer string) bool {
	return strings.HasPrefix(bearer, APIKeyPrefix) && len(bearer) > len(APIKeyPrefix)
}
