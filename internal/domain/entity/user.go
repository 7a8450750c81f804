package entity

import "time"

// Roles válidos dentro de una organización.
const (
	RoleAdmin  = "admin"
	RoleBroker = "broker"
)

// ValidRole informa si el rol es uno de los admitidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleBroker
}

// User representa una identidad autenticable (credenciales). La organización actual vive en Profile.
type User struct {
	ID           string
	Email        string // normalizado con NormalizeEmail
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile apunta a un usuario hacia su organización actual.
type Profile struct {
	UserID         string
	OrganizationID string
	Name           string
	Email          string
	UpdatedAt      time.Time
}

// UserRole registro de rol por usuario (compatibilidad con comprobaciones de rol heredadas).
type UserRole struct {
	UserID string
	Role   string
}
