package dto

import "time"

// CreateInvitationRequest entrada para invitar a un email. role vacío = broker.
type CreateInvitationRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role" validate:"omitempty,oneof=admin broker"`
}

// InvitationResponse invitación (el token solo se devuelve al emitirla).
type InvitationResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	OrganizationID string     `json:"organization_id"`
	Token          string     `json:"token,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreateInvitationResponse resultado de emitir una invitación.
type CreateInvitationResponse struct {
	Success    bool               `json:"success"`
	Invitation InvitationResponse `json:"invitation"`
	AcceptURL  string             `json:"accept_url"`
	EmailSent  bool               `json:"email_sent"`
}

// InvitationInfoResponse datos públicos de una invitación vigente.
type InvitationInfoResponse struct {
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	OrganizationName string    `json:"organization_name"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// AcceptInvitationResponse organización a la que se unió el usuario.
type AcceptInvitationResponse struct {
	Success          bool   `json:"success"`
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	Role             string `json:"role"`
}
