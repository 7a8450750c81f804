package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/jhoicas/policyminders-api/cmd/reminders/internal/commands"
	"github.com/jhoicas/policyminders-api/internal/bootstrap"
	"github.com/jhoicas/policyminders-api/pkg/config"
	"github.com/jhoicas/policyminders-api/pkg/logger"
)

var (
	version = "dev"
	cli     struct {
		Run    commands.RunCmd    `cmd:"" help:"Ejecutar la pasada automática de recordatorios"`
		Test   commands.TestCmd   `cmd:"" help:"Enviar un digest de prueba"`
		Manual commands.ManualCmd `cmd:"" help:"Enviar el recordatorio de una póliza"`
		Date   string             `help:"Simular el día indicado (YYYY-MM-DD) en lugar de hoy." placeholder:"YYYY-MM-DD"`
		Debug  bool               `help:"Logs en nivel debug."`

		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Description("Disparador de recordatorios de renovación de pólizas."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	globals := &commands.Globals{
		Debug:   cli.Debug,
		Version: version,
		Date:    cli.Date,
		Out:     os.Stdout,
		Open: func(ctx context.Context, opts bootstrap.Options) (*bootstrap.Services, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			level := cfg.App.LogLevel
			if cli.Debug {
				level = "debug"
			}
			log := logger.New(logger.Config{App: cfg.App.Name, Env: cfg.App.Env, Level: level, Out: os.Stderr})
			return bootstrap.New(ctx, cfg, log.Component("reminders-cli"), opts)
		},
	}
	err := cmd.Run(globals)
	cmd.FatalIfErrorf(err)
}
