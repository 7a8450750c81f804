package dto

import "time"

// SettingsRequest email que recibe los recordatorios de la organización.
type SettingsRequest struct {
	NotificationEmail string `json:"notification_email" validate:"required,email,max=255"`
}

// SettingsResponse configuración de notificaciones; campos vacíos si aún no se configuró.
type SettingsResponse struct {
	OrganizationID    string     `json:"organization_id"`
	NotificationEmail string     `json:"notification_email"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}
