package entity

import "time"

// Valores admitidos para los campos enumerados de Policy.
const (
	ClientStatusExisting = "existing"
	ClientStatusProspect = "prospect"

	LineMedical = "Medical"
	LineMotor   = "Motor"
	LineGeneral = "General"

	ChannelDirect = "direct"
	ChannelBroker = "broker"

	DefaultReminderLeadDays = 30
)

// ReminderLeadDaysOptions días de anticipación permitidos para el recordatorio.
var ReminderLeadDaysOptions = []int{14, 30, 45}

// ValidReminderLeadDays informa si days es una anticipación admitida.
func ValidReminderLeadDays(days int) bool {
	for _, d := range ReminderLeadDaysOptions {
		if d == days {
			return true
		}
	}
	return false
}

// Policy póliza de un cliente, con su fecha de vencimiento y el estado del recordatorio.
type Policy struct {
	ID               string
	OrganizationID   string
	ClientName       string
	ClientStatus     string    // existing, prospect
	Line             string    // Medical, Motor, General
	LineDetail       *string   // detalle opcional del ramo
	EndDate          time.Time // fecha de calendario (medianoche UTC, sin hora)
	Count            *int      // número de asegurados; nil = N/A
	InsurerName      string
	ChannelType      string // direct, broker
	ContactName      string
	ContactEmail     string
	ContactPhone     string
	Notes            *string
	Documents        []string // referencias opacas a blobs
	ReminderLeadDays int
	ReminderSentAt   *time.Time // último envío del ciclo de vencimiento actual
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Coverage devuelve el ramo con su detalle ("Medical – PAR") o solo el ramo.
func (p *Policy) Coverage() string {
	if p.LineDetail != nil && *p.LineDetail != "" {
		return p.Line + " – " + *p.LineDetail
	}
	return p.Line
}
