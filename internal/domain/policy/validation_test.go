package policy_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/policy"
)

func validPolicy() *entity.Policy {
	return &entity.Policy{
		OrganizationID: "org-1",
		ClientName:     "  Globex  ",
		ClientStatus:   entity.ClientStatusExisting,
		Line:           entity.LineMotor,
		EndDate:        time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		InsurerName:    "Acme",
		ChannelType:    entity.ChannelDirect,
		ContactName:    "Jane Roe",
		ContactEmail:   " Jane@Example.COM ",
		ContactPhone:   "+57 (300) 000-0000",
	}
}

func TestNormalize_AplicaValoresPorDefecto(t *testing.T) {
	p := validPolicy()
	blank := "   "
	p.Notes = &blank

	policy.Normalize(p)

	assert.Equal(t, "Globex", p.ClientName)
	assert.Equal(t, "jane@example.com", p.ContactEmail)
	assert.Equal(t, entity.DefaultReminderLeadDays, p.ReminderLeadDays)
	assert.Nil(t, p.Notes)
	assert.NotNil(t, p.Documents)
}

func TestValidate_PolizaValida(t *testing.T) {
	p := validPolicy()
	policy.Normalize(p)
	require.NoError(t, policy.Validate(p))
}

func TestValidate_Errores(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *entity.Policy)
	}{
		{"cliente vacío", func(p *entity.Policy) { p.ClientName = "" }},
		{"estado desconocido", func(p *entity.Policy) { p.ClientStatus = "lead" }},
		{"ramo desconocido", func(p *entity.Policy) { p.Line = "Life" }},
		{"canal desconocido", func(p *entity.Policy) { p.ChannelType = "agent" }},
		{"sin fecha", func(p *entity.Policy) { p.EndDate = time.Time{} }},
		{"count cero", func(p *entity.Policy) { zero := 0; p.Count = &zero }},
		{"email inválido", func(p *entity.Policy) { p.ContactEmail = "no-es-email" }},
		{"teléfono con letras", func(p *entity.Policy) { p.ContactPhone = "call me" }},
		{"anticipación no admitida", func(p *entity.Policy) { p.ReminderLeadDays = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPolicy()
			policy.Normalize(p)
			tt.mutate(p)
			assert.ErrorIs(t, policy.Validate(p), policy.ErrInvalidPolicy)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, policy.ValidateEmail("broker@example.com"))
	assert.ErrorIs(t, policy.ValidateEmail(""), policy.ErrInvalidEmail)
	assert.ErrorIs(t, policy.ValidateEmail("broker@"), policy.ErrInvalidEmail)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"válida", "Correct-horse1", true},
		{"corta", "Ab1", false},
		{"supera bcrypt", "Aa1" + strings.Repeat("x", 70), false},
		{"sin mayúscula", "correct-horse1", false},
		{"sin minúscula", "CORRECT-HORSE1", false},
		{"sin número", "Correct-horse", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, policy.ErrWeakPassword)
		})
	}
}
