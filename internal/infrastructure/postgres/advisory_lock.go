package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
)

var _ ports.Locker = (*AdvisoryLocker)(nil)

// AdvisoryLocker candado por clave con pg_try_advisory_lock. El candado es de sesión,
// así que se retiene la conexión del pool hasta liberarlo.
type AdvisoryLocker struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLocker construye el candado sobre el pool.
func NewAdvisoryLocker(pool *pgxpool.Pool) *AdvisoryLocker {
	return &AdvisoryLocker{pool: pool}
}

// TryLock intenta tomar el candado de key sin esperar.
func (l *AdvisoryLocker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire conn: %w", err)
	}
	id := lockID(key)
	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, id).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, mapError("advisory lock", err)
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}
	released := false
	unlock := func() {
		if released {
			return
		}
		released = true
		releaseSession(context.Background(), conn, id, conn.Conn().Close)
		conn.Release()
	}
	return unlock, true, nil
}

// releaseSession suelta el candado de sesión id. Si el unlock falla o no consta como liberado,
// cierra la conexión: el pool la descarta en Release y PostgreSQL suelta el candado con la sesión.
func releaseSession(ctx context.Context, q rowQuerier, id int64, closeConn func(context.Context) error) {
	var unlocked bool
	if err := q.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, id).Scan(&unlocked); err == nil && unlocked {
		return
	}
	_ = closeConn(ctx)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func lockID(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}
