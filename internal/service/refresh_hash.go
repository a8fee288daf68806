package service

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashRefreshToken — base64url (без паддинга) от sha256 opaque-токена.
// В хранилище лежит только хеш, сам токен никогда не сохраняется.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
