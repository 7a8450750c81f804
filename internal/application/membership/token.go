package membership

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 32

// TokenGenerator genera tokens de invitación opacos.
type TokenGenerator func() (string, error)

// RandomToken 32 bytes aleatorios en base64url sin relleno.
func RandomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generar token de invitación: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// tokenPrefix primeros caracteres del token para logs; nunca se registra completo.
func tokenPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
