package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
)

var _ ports.Locker = (*Locker)(nil)

// Locker candado por clave dentro del proceso.
type Locker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocker crea un Locker vacío.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]struct{})}
}

func (l *Locker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
