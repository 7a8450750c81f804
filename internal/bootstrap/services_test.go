package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/membership"
	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/bootstrap"
	"github.com/jhoicas/policyminders-api/pkg/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App:        config.AppConfig{Env: "test", Name: "policyminders-test", BaseURL: "https://app.test"},
		Store:      config.StoreConfig{Backend: config.StoreMemory},
		JWT:        config.JWTConfig{Secret: "secret", Expiration: 60, Issuer: "test"},
		Reminder:   config.ReminderConfig{Timezone: "America/Bogota"},
		Invitation: config.InvitationConfig{TTLHours: 24},
		Org:        config.OrgConfig{DefaultMaxSeats: 3},
	}
}

func TestNew_BackendMemoriaConectaCasosDeUso(t *testing.T) {
	ctx := context.Background()
	clock := ports.FixedClock{T: time.Date(2026, time.May, 4, 15, 0, 0, 0, time.UTC)}
	svc, err := bootstrap.New(ctx, memoryConfig(), zerolog.Nop(), bootstrap.Options{Clock: clock})
	require.NoError(t, err)
	defer svc.Close()

	assert.Nil(t, svc.Pool)
	assert.Nil(t, svc.Redis)

	reg, err := svc.Auth.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "Correct-horse1", Name: "Ana"})
	require.NoError(t, err)
	require.NotNil(t, reg.Membership)

	m, err := svc.Memberships.GetByUser(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, m)

	res, err := svc.Reconciler.IssueInvitation(ctx, membership.Identity{UserID: reg.User.ID, Email: reg.User.Email, Name: "Ana"}, "bob@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, clock.T.Add(24*time.Hour), res.Invitation.ExpiresAt, "la vigencia sale de INVITATION_TTL_HOURS")
	assert.Contains(t, res.AcceptURL, "https://app.test/accept-invitation?token=")
	assert.False(t, res.EmailSent, "sin MAIL_PROVIDER el correo solo se registra")

	_, err = svc.Scheduler.SendTest(ctx, m.OrganizationID, "ops@example.com")
	assert.ErrorIs(t, err, ports.ErrMailerUnconfigured)
}

func TestNew_RechazaRedisInalcanzable(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{Addr: "127.0.0.1:1"}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := bootstrap.New(ctx, cfg, zerolog.Nop(), bootstrap.Options{})
	assert.Error(t, err)
}
