//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/policyminders-api/internal/application/auth"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
	"github.com/jhoicas/policyminders-api/pkg/config"
)

func setupPostgres(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := NewPool(ctx, config.DBConfig{
		DatabaseURL: fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// Idempotente: una segunda ejecución no reaplica nada.
	require.NoError(t, RunMigrations(ctx, pool))
	return NewStore(pool)
}

func signup(t *testing.T, st *Store, email string) (*entity.User, *entity.Organization) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &entity.User{ID: uuid.NewString(), Email: email, PasswordHash: "x", Name: email, CreatedAt: now, UpdatedAt: now}
	org := &entity.Organization{ID: uuid.NewString(), Name: email + "'s Organization", MaxSeats: 20, CreatedAt: now, UpdatedAt: now}
	err := st.TxRunner.RunSignup(ctx, func(r auth.SignupRepos) error {
		if err := r.Users.Create(ctx, u); err != nil {
			return err
		}
		if err := r.Organizations.Create(ctx, org); err != nil {
			return err
		}
		if err := r.Companies.Create(ctx, &entity.Company{ID: org.ID, Name: org.Name, CreatedAt: now}); err != nil {
			return err
		}
		m := &entity.Membership{ID: uuid.NewString(), UserID: u.ID, OrganizationID: org.ID, Role: entity.RoleAdmin, CreatedAt: now}
		if err := r.Memberships.Create(ctx, m); err != nil {
			return err
		}
		return r.Profiles.Upsert(ctx, &entity.Profile{UserID: u.ID, OrganizationID: org.ID, Name: u.Name, Email: email, UpdatedAt: now})
	})
	require.NoError(t, err)
	return u, org
}

func newPolicy(orgID string, end time.Time, lead int) *entity.Policy {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entity.Policy{
		ID: uuid.NewString(), OrganizationID: orgID, ClientName: "Acme", ClientStatus: entity.ClientStatusExisting,
		Line: entity.LineMedical, EndDate: end, InsurerName: "Sura", ChannelType: entity.ChannelBroker,
		ContactName: "Laura", ContactEmail: "laura@acme.com", ContactPhone: "3001234567",
		Documents: []string{}, ReminderLeadDays: lead, CreatedAt: now, UpdatedAt: now,
	}
}

func TestIntegration_SignupYMembresias(t *testing.T) {
	st := setupPostgres(t)
	ctx := context.Background()

	u, org := signup(t, st, "ana@example.com")

	got, err := st.Users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	err = st.Users.Create(ctx, &entity.User{ID: uuid.NewString(), Email: "ana@example.com", PasswordHash: "x",
		CreatedAt: time.Now(), UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	m, err := st.Memberships.GetByUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, org.ID, m.OrganizationID)

	err = st.Memberships.Create(ctx, &entity.Membership{ID: uuid.NewString(), UserID: u.ID, OrganizationID: org.ID,
		Role: entity.RoleBroker, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrConflict)

	exists, err := st.Memberships.ExistsByEmail(ctx, org.ID, "ANA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	// El borrado de la organización exige quitar antes la membresía.
	assert.ErrorIs(t, st.Organizations.Delete(ctx, org.ID), domain.ErrConflict)
	require.NoError(t, st.Memberships.DeleteByUser(ctx, u.ID))
	require.NoError(t, st.Organizations.Delete(ctx, org.ID))
	gone, err := st.Organizations.GetByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestIntegration_MoverMembresiaYEmailPlegado(t *testing.T) {
	st := setupPostgres(t)
	ctx := context.Background()

	u, solo := signup(t, st, "strasse@example.com")
	_, team := signup(t, st, "ana@example.com")

	require.NoError(t, st.Memberships.MoveToOrganization(ctx, u.ID, team.ID, entity.RoleBroker))
	m, err := st.Memberships.GetByUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, team.ID, m.OrganizationID)
	assert.Equal(t, entity.RoleBroker, m.Role)

	// "STRAßE" se pliega a "strasse", igual que en memoria.
	exists, err := st.Memberships.ExistsByEmail(ctx, team.ID, "STRAßE@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, st.Organizations.Delete(ctx, solo.ID))
	assert.ErrorIs(t, st.Memberships.MoveToOrganization(ctx, uuid.NewString(), team.ID, entity.RoleBroker), domain.ErrNotFound)
}

func TestIntegration_InvitacionPendienteUnica(t *testing.T) {
	st := setupPostgres(t)
	ctx := context.Background()
	u, org := signup(t, st, "admin@example.com")
	now := time.Now().UTC().Truncate(time.Microsecond)

	inv := &entity.Invitation{ID: uuid.NewString(), Token: "tok-1", Email: "b@example.com", Role: entity.RoleBroker,
		OrganizationID: org.ID, InvitedBy: u.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, st.Invitations.Create(ctx, inv))

	dup := *inv
	dup.ID, dup.Token = uuid.NewString(), "tok-2"
	assert.ErrorIs(t, st.Invitations.Create(ctx, &dup), domain.ErrAlreadyInvited)

	ok, err := st.Invitations.MarkAccepted(ctx, inv.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = st.Invitations.MarkAccepted(ctx, inv.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// Aceptada la anterior, se puede volver a invitar.
	require.NoError(t, st.Invitations.Create(ctx, &dup))
}

func TestIntegration_ReclamoDeRecordatorios(t *testing.T) {
	st := setupPostgres(t)
	ctx := context.Background()
	_, org := signup(t, st, "rem@example.com")

	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	due := newPolicy(org.ID, today.AddDate(0, 0, 30), 30)
	notDue := newPolicy(org.ID, today.AddDate(0, 0, 30), 14)
	require.NoError(t, st.Policies.Create(ctx, due))
	require.NoError(t, st.Policies.Create(ctx, notDue))

	candidates, err := st.Policies.ListReminderCandidates(ctx, today, loc, "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, due.ID, candidates[0].ID)

	// 10:00 en Bogotá del mismo día.
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	claimed, err := st.Policies.ClaimReminders(ctx, []string{due.ID}, now, today, loc)
	require.NoError(t, err)
	assert.Equal(t, []string{due.ID}, claimed)

	again, err := st.Policies.ClaimReminders(ctx, []string{due.ID}, now.Add(time.Minute), today, loc)
	require.NoError(t, err)
	assert.Empty(t, again)

	candidates, err = st.Policies.ListReminderCandidates(ctx, today, loc, org.ID)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	require.NoError(t, st.Policies.ReleaseReminders(ctx, []repository.ReminderClaim{{PolicyID: due.ID}}, now))
	p, err := st.Policies.GetByID(ctx, org.ID, due.ID)
	require.NoError(t, err)
	assert.Nil(t, p.ReminderSentAt)
}

func TestIntegration_AdvisoryLock(t *testing.T) {
	st := setupPostgres(t)
	ctx := context.Background()

	unlock, ok, err := st.Locker.TryLock(ctx, "reminders:org")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = st.Locker.TryLock(ctx, "reminders:org")
	require.NoError(t, err)
	assert.False(t, ok)

	unlock()
	unlock2, ok, err := st.Locker.TryLock(ctx, "reminders:org")
	require.NoError(t, err)
	assert.True(t, ok)
	unlock2()
}
