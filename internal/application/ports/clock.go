package ports

import "time"

// Clock fuente de "ahora" inyectable; toda la aritmética de fechas pasa por aquí.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real del proceso.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock reloj detenido en T; útil en CLI (--date) y pruebas.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
