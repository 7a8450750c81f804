package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/policyminders-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/policyminders-api/internal/interfaces/http"
	"github.com/jhoicas/policyminders-api/pkg/config"
	"github.com/jhoicas/policyminders-api/pkg/logger"
)

// @title        PolicyMinders API
// @version      1.0
// @description  Recordatorios de renovación de pólizas y gestión de equipos por organización.
// @BasePath     /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		App:   cfg.App.Name,
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Backend).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}
	if cfg.Reminder.CronSecret == "" {
		log.Warn().Msg("REMINDER_CRON_SECRET vacío: POST /api/reminders/run queda deshabilitado")
	}

	ctx := context.Background()
	svc, err := bootstrap.New(ctx, cfg, log.Component("api"), bootstrap.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	checks := map[string]httpRouter.Pinger{}
	if svc.Pool != nil {
		checks["postgres"] = svc.Pool
	}
	if svc.Redis != nil {
		checks["redis"] = redisPinger{svc.Redis}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30, // una pasada manual puede tardar por los reintentos del proveedor
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PolicyMinders API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      svc.Auth,
		PolicyUC:    svc.Policies,
		Reconciler:  svc.Reconciler,
		Settings:    svc.Settings,
		Scheduler:   svc.Scheduler,
		Memberships: svc.Memberships,
		Profiles:    svc.Profiles,
		Health:      httpRouter.NewHealthHandler(cfg.App.Name, checks),
		JWTSecret:   cfg.JWT.Secret,
		CronSecret:  cfg.Reminder.CronSecret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// redisPinger adapta el cliente de Redis al chequeo de /health.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
