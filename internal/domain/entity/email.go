package entity

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeEmail devuelve el email sin espacios y con case folding Unicode,
// de modo que dos direcciones que solo difieren en mayúsculas comparan iguales.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// SameEmail compara dos emails ignorando mayúsculas.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
