package dto

import "time"

// PolicyRequest entrada para crear o actualizar una póliza. end_date en formato YYYY-MM-DD.
type PolicyRequest struct {
	ClientName       string   `json:"client_name" validate:"required,max=200"`
	ClientStatus     string   `json:"client_status" validate:"required,oneof=existing prospect"`
	Line             string   `json:"line" validate:"required,oneof=Medical Motor General"`
	LineDetail       *string  `json:"line_detail" validate:"omitempty,max=200"`
	EndDate          string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Count            *int     `json:"count" validate:"omitempty,min=1,max=1000000"`
	InsurerName      string   `json:"insurer_name" validate:"required,max=200"`
	ChannelType      string   `json:"channel_type" validate:"required,oneof=direct broker"`
	ContactName      string   `json:"contact_name" validate:"required,max=200"`
	ContactEmail     string   `json:"contact_email" validate:"required,email,max=255"`
	ContactPhone     string   `json:"contact_phone" validate:"required,max=20"`
	Notes            *string  `json:"notes" validate:"omitempty,max=2000"`
	Documents        []string `json:"documents"`
	ReminderLeadDays int      `json:"reminder_lead_days" validate:"omitempty,oneof=14 30 45"`
}

// PolicyResponse salida de una póliza.
type PolicyResponse struct {
	ID               string     `json:"id"`
	OrganizationID   string     `json:"organization_id"`
	ClientName       string     `json:"client_name"`
	ClientStatus     string     `json:"client_status"`
	Line             string     `json:"line"`
	LineDetail       *string    `json:"line_detail"`
	EndDate          string     `json:"end_date"`
	Count            *int       `json:"count"`
	InsurerName      string     `json:"insurer_name"`
	ChannelType      string     `json:"channel_type"`
	ContactName      string     `json:"contact_name"`
	ContactEmail     string     `json:"contact_email"`
	ContactPhone     string     `json:"contact_phone"`
	Notes            *string    `json:"notes"`
	Documents        []string   `json:"documents"`
	ReminderLeadDays int        `json:"reminder_lead_days"`
	ReminderSentAt   *time.Time `json:"reminder_sent_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PolicyListResponse página de pólizas.
type PolicyListResponse struct {
	Items []PolicyResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
