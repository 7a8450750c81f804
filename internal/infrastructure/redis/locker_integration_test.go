//go:build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/policyminders-api/pkg/config"
)

func setupRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return config.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())}
}

func TestIntegration_Locker(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, setupRedis(t))
	require.NoError(t, err)
	defer client.Close()

	l := NewLocker(client, time.Second)

	unlock, ok, err := l.TryLock(ctx, "reminders:org-a")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "reminders:org-a")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.TryLock(ctx, "reminders:org-b")
	require.NoError(t, err)
	assert.True(t, ok)

	unlock()
	_, ok, err = l.TryLock(ctx, "reminders:org-a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIntegration_LockerVencido(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, setupRedis(t))
	require.NoError(t, err)
	defer client.Close()

	l := NewLocker(client, 200*time.Millisecond)
	stale, ok, err := l.TryLock(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(400 * time.Millisecond)
	_, ok, err = l.TryLock(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	// El dueño anterior no puede liberar el candado del nuevo.
	stale()
	_, ok, err = l.TryLock(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
