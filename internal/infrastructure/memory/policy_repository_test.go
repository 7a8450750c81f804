package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func seedPolicy(t *testing.T, repo *PolicyRepo, id, org string, days int) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &entity.Policy{
		ID:               id,
		OrganizationID:   org,
		ClientName:       "Client " + id,
		EndDate:          day.AddDate(0, 0, days),
		ReminderLeadDays: 30,
	}))
}

func TestPolicyRepo_ListReminderCandidates(t *testing.T) {
	repo := NewPolicyRepository(NewDB())
	ctx := context.Background()
	seedPolicy(t, repo, "due-a", "org-a", 30)
	seedPolicy(t, repo, "due-b", "org-b", 30)
	seedPolicy(t, repo, "later", "org-a", 31)

	all, err := repo.ListReminderCandidates(ctx, day, time.UTC, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyA, err := repo.ListReminderCandidates(ctx, day, time.UTC, "org-a")
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, "due-a", onlyA[0].ID)
}

func TestPolicyRepo_ClaimReminders(t *testing.T) {
	t.Run("segundo reclamo del mismo día no obtiene nada", func(t *testing.T) {
		repo := NewPolicyRepository(NewDB())
		ctx := context.Background()
		seedPolicy(t, repo, "p1", "org-a", 30)
		now := day.Add(9 * time.Hour)

		claimed, err := repo.ClaimReminders(ctx, []string{"p1"}, now, day, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, claimed)

		claimed, err = repo.ClaimReminders(ctx, []string{"p1"}, now.Add(time.Minute), day, time.UTC)
		require.NoError(t, err)
		assert.Empty(t, claimed)

		p, err := repo.GetByID(ctx, "org-a", "p1")
		require.NoError(t, err)
		require.NotNil(t, p.ReminderSentAt)
		assert.True(t, p.ReminderSentAt.Equal(now))
	})

	t.Run("reclamos concurrentes: un solo ganador", func(t *testing.T) {
		repo := NewPolicyRepository(NewDB())
		seedPolicy(t, repo, "p1", "org-a", 30)

		var wg sync.WaitGroup
		results := make(chan int, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				claimed, err := repo.ClaimReminders(context.Background(), []string{"p1"}, day.Add(time.Hour), day, time.UTC)
				if err == nil {
					results <- len(claimed)
				}
			}()
		}
		wg.Wait()
		close(results)

		total := 0
		for n := range results {
			total += n
		}
		assert.Equal(t, 1, total)
	})
}

func TestPolicyRepo_ReleaseReminders(t *testing.T) {
	repo := NewPolicyRepository(NewDB())
	ctx := context.Background()
	seedPolicy(t, repo, "p1", "org-a", 30)
	claimedAt := day.Add(9 * time.Hour)

	_, err := repo.ClaimReminders(ctx, []string{"p1"}, claimedAt, day, time.UTC)
	require.NoError(t, err)

	require.NoError(t, repo.ReleaseReminders(ctx, []repository.ReminderClaim{{PolicyID: "p1"}}, claimedAt))

	p, err := repo.GetByID(ctx, "org-a", "p1")
	require.NoError(t, err)
	assert.Nil(t, p.ReminderSentAt, "liberar restaura el valor previo")

	// Un reclamo posterior no se pisa con una liberación vieja.
	later := claimedAt.Add(time.Hour)
	_, err = repo.ClaimReminders(ctx, []string{"p1"}, later, day, time.UTC)
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseReminders(ctx, []repository.ReminderClaim{{PolicyID: "p1"}}, claimedAt))

	p, err = repo.GetByID(ctx, "org-a", "p1")
	require.NoError(t, err)
	require.NotNil(t, p.ReminderSentAt)
	assert.True(t, p.ReminderSentAt.Equal(later))
}

func TestPolicyRepo_AislamientoPorTenant(t *testing.T) {
	repo := NewPolicyRepository(NewDB())
	ctx := context.Background()
	seedPolicy(t, repo, "p1", "org-a", 30)

	p, err := repo.GetByID(ctx, "org-b", "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Error(t, repo.Delete(ctx, "org-b", "p1"))
}

func TestPolicyRepo_ListBusquedaYPaginacion(t *testing.T) {
	repo := NewPolicyRepository(NewDB())
	ctx := context.Background()
	seedPolicy(t, repo, "p3", "org-a", 3)
	seedPolicy(t, repo, "p1", "org-a", 1)
	seedPolicy(t, repo, "p2", "org-a", 2)

	page, err := repo.List(ctx, "org-a", "", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "p2", page[0].ID)
	assert.Equal(t, "p3", page[1].ID)

	found, err := repo.List(ctx, "org-a", "client P1", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p1", found[0].ID)
}

func TestDB_FailOn(t *testing.T) {
	db := NewDB()
	repo := NewPolicyRepository(db)
	boom := errors.New("boom")

	db.FailOn("policies.ListReminderCandidates", boom)
	_, err := repo.ListReminderCandidates(context.Background(), day, time.UTC, "")
	assert.ErrorIs(t, err, boom)

	db.ClearFault("policies.ListReminderCandidates")
	_, err = repo.ListReminderCandidates(context.Background(), day, time.UTC, "")
	assert.NoError(t, err)
}
