package entity

import "time"

// DefaultInvitationTTL vigencia de una invitación desde su creación.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation invitación por token a una organización. accepted_at nil = pendiente.
type Invitation struct {
	ID             string
	Token          string
	Email          string // normalizado con NormalizeEmail
	Role           string
	OrganizationID string
	InvitedBy      string
	ExpiresAt      time.Time
	AcceptedAt     *time.Time
	CreatedAt      time.Time
}

// IsAccepted informa si la invitación ya fue aceptada.
func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// IsExpired informa si la invitación venció respecto a now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsPending pendiente = no aceptada y no vencida.
func (i *Invitation) IsPending(now time.Time) bool {
	return !i.IsAccepted() && !i.IsExpired(now)
}
