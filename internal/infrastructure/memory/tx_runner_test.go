package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/policyminders-api/internal/application/auth"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

func TestTxRunner_RestauraSiFalla(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.TxRunner.RunSignup(ctx, func(r auth.SignupRepos) error {
		if err := r.Users.Create(ctx, &entity.User{ID: "u1", Email: "a@example.com", CreatedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := st.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestLocker_TryLock(t *testing.T) {
	l := NewLocker()
	ctx := context.Background()

	unlock, ok, err := l.TryLock(ctx, "org-a")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "org-a")
	require.NoError(t, err)
	assert.False(t, ok)

	unlock()
	unlock()

	_, ok, err = l.TryLock(ctx, "org-a")
	require.NoError(t, err)
	assert.True(t, ok)
}
