package dto

import "time"

// RegisterRequest entrada para registro: crea usuario y organización placeholder.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72,password"`
	Name        string `json:"name" validate:"omitempty,max=200"`
	CompanyName string `json:"company_name" validate:"omitempty,max=200"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MembershipResponse organización y rol actuales del usuario.
type MembershipResponse struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT. Membership es nil si el usuario no pertenece a ninguna organización.
type LoginResponse struct {
	Token      string              `json:"token"`
	User       UserResponse        `json:"user"`
	Membership *MembershipResponse `json:"membership,omitempty"`
}
