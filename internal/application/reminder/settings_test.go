package reminder_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/application/reminder"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/infrastructure/memory"
)

func TestSettingsResolver_SaveSettings(t *testing.T) {
	st := memory.NewStore()
	r := reminder.NewSettingsResolver(st.Settings, ports.FixedClock{T: time.Now()})
	ctx := context.Background()
	admin := &entity.Membership{UserID: "u1", OrganizationID: "org-a", Role: entity.RoleAdmin}

	_, err := r.GetRecipient(ctx, "org-a")
	assert.ErrorIs(t, err, domain.ErrRecipientNotConfigured)

	saved, err := r.SaveSettings(ctx, admin, "  Alerts@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alerts@example.com", saved.NotificationEmail)

	// Un segundo guardado actualiza la misma fila.
	again, err := r.SaveSettings(ctx, admin, "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)

	got, err := r.GetRecipient(ctx, "org-a")
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", got)
}

func TestSettingsResolver_SoloAdmins(t *testing.T) {
	st := memory.NewStore()
	r := reminder.NewSettingsResolver(st.Settings, ports.FixedClock{T: time.Now()})
	broker := &entity.Membership{UserID: "u2", OrganizationID: "org-a", Role: entity.RoleBroker}

	_, err := r.SaveSettings(context.Background(), broker, "alerts@example.com")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestSettingsResolver_EmailInvalido(t *testing.T) {
	st := memory.NewStore()
	r := reminder.NewSettingsResolver(st.Settings, ports.FixedClock{T: time.Now()})
	admin := &entity.Membership{UserID: "u1", OrganizationID: "org-a", Role: entity.RoleAdmin}

	_, err := r.SaveSettings(context.Background(), admin, "not-an-email")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
