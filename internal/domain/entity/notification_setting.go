package entity

import "time"

// NotificationSetting destinatario de los recordatorios de una organización (una fila por organización).
type NotificationSetting struct {
	ID                string
	OrganizationID    string
	NotificationEmail string
	UpdatedAt         time.Time
}
