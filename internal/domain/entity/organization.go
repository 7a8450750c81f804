package entity

import "time"

// DefaultMaxSeats asientos por defecto de una organización nueva.
const DefaultMaxSeats = 20

// Organization representa un tenant. Se crea como placeholder de un solo miembro en el registro.
type Organization struct {
	ID                 string
	Name               string
	MaxSeats           int
	SubscriptionStatus *string // nil = sin suscripción
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Membership vincula un usuario con exactamente una Organization.
type Membership struct {
	ID             string
	UserID         string
	OrganizationID string
	Role           string // admin, broker
	CreatedAt      time.Time
}

// IsAdmin informa si la membresía tiene rol admin.
func (m *Membership) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// MemberWithProfile membresía enriquecida con los datos del perfil para listados.
type MemberWithProfile struct {
	Membership
	Name  string
	Email string
}
