package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

func newInvitation(id, token, email string, created time.Time) *entity.Invitation {
	return &entity.Invitation{
		ID:             id,
		Token:          token,
		Email:          email,
		Role:           entity.RoleBroker,
		OrganizationID: "org-a",
		InvitedBy:      "admin",
		CreatedAt:      created,
		ExpiresAt:      created.Add(entity.DefaultInvitationTTL),
	}
}

func TestInvitationRepo_UnaPendientePorEmail(t *testing.T) {
	repo := NewInvitationRepository(NewDB())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newInvitation("i1", "t1", "a@example.com", now)))
	err := repo.Create(ctx, newInvitation("i2", "t2", "A@Example.com", now))
	assert.ErrorIs(t, err, domain.ErrAlreadyInvited)

	ok, err := repo.MarkAccepted(ctx, "i1", now)
	require.NoError(t, err)
	require.True(t, ok)

	assert.NoError(t, repo.Create(ctx, newInvitation("i3", "t3", "a@example.com", now)),
		"una invitación aceptada no bloquea una nueva")
}

func TestInvitationRepo_MarkAcceptedUnaVez(t *testing.T) {
	repo := NewInvitationRepository(NewDB())
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newInvitation("i1", "t1", "a@example.com", now)))

	ok, err := repo.MarkAccepted(ctx, "i1", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkAccepted(ctx, "i1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvitationRepo_DeleteExpired(t *testing.T) {
	repo := NewInvitationRepository(NewDB())
	ctx := context.Background()
	created := time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, repo.Create(ctx, newInvitation("old", "t1", "a@example.com", created)))

	n, err := repo.DeleteExpired(ctx, "org-a", "a@example.com", time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	inv, err := repo.GetByToken(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestInvitationRepo_ListPending(t *testing.T) {
	repo := NewInvitationRepository(NewDB())
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newInvitation("fresh", "t1", "a@example.com", now)))
	require.NoError(t, repo.Create(ctx, newInvitation("stale", "t2", "b@example.com", now.Add(-8*24*time.Hour))))

	pending, err := repo.ListPending(ctx, "org-a", now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "fresh", pending[0].ID)
}
