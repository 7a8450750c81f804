package dto

import "time"

// TeamMemberResponse miembro de la organización con datos de perfil.
type TeamMemberResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateMemberRoleRequest nuevo rol de un miembro.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin broker"`
}
