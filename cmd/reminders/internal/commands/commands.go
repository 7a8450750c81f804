// Package commands implementa los subcomandos de la CLI de recordatorios.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/bootstrap"
)

// Opener construye los servicios con las opciones de la invocación.
type Opener func(ctx context.Context, opts bootstrap.Options) (*bootstrap.Services, error)

// Globals flags y dependencias compartidas por todos los subcomandos.
type Globals struct {
	Debug   bool
	Version string
	Date    string // YYYY-MM-DD; vacío = hoy
	Out     io.Writer
	Open    Opener
}

// open resuelve --date y abre los servicios.
func (g *Globals) open(ctx context.Context) (*bootstrap.Services, error) {
	var opts bootstrap.Options
	if g.Date != "" {
		day, err := time.Parse(time.DateOnly, g.Date)
		if err != nil {
			return nil, fmt.Errorf("--date inválido %q: %w", g.Date, err)
		}
		// Mediodía UTC cae en el mismo día calendario en cualquier zona habitual.
		opts.Clock = ports.FixedClock{T: day.Add(12 * time.Hour)}
	}
	return g.Open(ctx, opts)
}

func (g *Globals) print(v any) error {
	enc := json.NewEncoder(g.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
