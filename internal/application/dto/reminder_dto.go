package dto

// RunRemindersRequest cuerpo opcional del disparador programado.
type RunRemindersRequest struct {
	OrganizationID string `json:"organization_id"`
}

// ReminderPolicyError póliza que no pudo procesarse en una pasada.
type ReminderPolicyError struct {
	PolicyID       string `json:"policy_id"`
	OrganizationID string `json:"organization_id"`
	Reason         string `json:"reason"`
}

// RunRemindersResponse resultado de una pasada completa.
type RunRemindersResponse struct {
	SentCount int                   `json:"sent_count"`
	Sent      []string              `json:"sent"`
	Skipped   []string              `json:"skipped"`
	Errors    []ReminderPolicyError `json:"errors"`
	Error     string                `json:"error,omitempty"`
}

// Modos de envío bajo demanda.
const (
	SendModeTest   = "test"
	SendModeManual = "manual"
)

// SendReminderRequest envío de prueba ({mode:"test", recipient}) o manual ({mode:"manual", policy_id}).
type SendReminderRequest struct {
	Mode      string `json:"mode" validate:"required,oneof=test manual"`
	Recipient string `json:"recipient" validate:"omitempty,email"`
	PolicyID  string `json:"policy_id"`
}

// SendReminderResponse resultado de un envío bajo demanda.
type SendReminderResponse struct {
	SentCount int    `json:"sent_count"`
	Recipient string `json:"recipient,omitempty"`
	Code      string `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
}
