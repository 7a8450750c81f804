package ports

import "context"

// Locker candado distribuido opcional alrededor del reclamo+envío de una organización.
// TryLock no bloquea: ok=false si otro proceso ya tiene la clave.
// unlock debe llamarse siempre que ok sea true.
type Locker interface {
	TryLock(ctx context.Context, key string) (unlock func(), ok bool, err error)
}
