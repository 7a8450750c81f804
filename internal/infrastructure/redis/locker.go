// Package redis implementa el candado distribuido de recordatorios sobre Redis.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/pkg/config"
)

var _ ports.Locker = (*Locker)(nil)

// DefaultLockTTL vence el candado si el proceso muere sin liberarlo.
const DefaultLockTTL = 2 * time.Minute

// releaseScript borra la clave solo si sigue siendo nuestra.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker candado SET NX PX con liberación condicional.
type Locker struct {
	client goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewClient abre la conexión y verifica con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// NewLocker construye el candado. ttl <= 0 usa DefaultLockTTL.
func NewLocker(client goredis.UniversalClient, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Locker{client: client, ttl: ttl, prefix: "policyminders:lock:"}
}

// TryLock intenta tomar key sin esperar.
func (l *Locker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	token, err := randomToken()
	if err != nil {
		return nil, false, err
	}
	fullKey := l.prefix + key
	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis SETNX %s: %w", fullKey, err)
	}
	if !ok {
		return nil, false, nil
	}
	released := false
	unlock := func() {
		if released {
			return
		}
		released = true
		_ = releaseScript.Run(context.Background(), l.client, []string{fullKey}, token).Err()
	}
	return unlock, true, nil
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generar token de candado: %w", err)
	}
	return hex.EncodeToString(b), nil
}
