// Package bootstrap arma los casos de uso sobre el backend de persistencia configurado.
// Lo comparten el servidor HTTP (cmd/api) y la CLI de recordatorios (cmd/reminders).
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/policyminders-api/internal/application/auth"
	"github.com/jhoicas/policyminders-api/internal/application/membership"
	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/application/reminder"
	"github.com/jhoicas/policyminders-api/internal/application/usecase"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
	"github.com/jhoicas/policyminders-api/internal/infrastructure/mail"
	"github.com/jhoicas/policyminders-api/internal/infrastructure/memory"
	"github.com/jhoicas/policyminders-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/policyminders-api/internal/infrastructure/redis"
	"github.com/jhoicas/policyminders-api/pkg/config"
)

// repositories vista común de los almacenes en memoria y PostgreSQL.
type repositories struct {
	users         repository.UserRepository
	profiles      repository.ProfileRepository
	roles         repository.UserRoleRepository
	organizations repository.OrganizationRepository
	companies     repository.CompanyRepository
	memberships   repository.MembershipRepository
	invitations   repository.InvitationRepository
	policies      repository.PolicyRepository
	settings      repository.NotificationSettingRepository
	tx            auth.TxRunner
	locker        ports.Locker
}

// Services casos de uso listos para servir.
type Services struct {
	Auth       *auth.AuthUseCase
	Policies   *usecase.PolicyUseCase
	Reconciler *membership.Reconciler
	Settings   *reminder.SettingsResolver
	Scheduler  *reminder.Scheduler

	Memberships repository.MembershipRepository
	Profiles    repository.ProfileRepository

	// Pool y Redis quedan nil cuando el backend no los usa.
	Pool  *pgxpool.Pool
	Redis *goredis.Client

	closers []func()
}

// Options ajustes de arranque que no vienen del entorno.
type Options struct {
	Clock  ports.Clock  // nil = reloj del sistema
	Mailer ports.Mailer // nil = proveedor según MAIL_PROVIDER
}

// New abre el backend configurado y construye los casos de uso. El llamador debe invocar Close.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*Services, error) {
	clock := opts.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	s := &Services{}

	var repos repositories
	switch cfg.Store.Backend {
	case config.StoreMemory:
		log.Warn().Msg("STORE_BACKEND=memory: los datos se pierden al reiniciar")
		st := memory.NewStore()
		repos = repositories{
			users: st.Users, profiles: st.Profiles, roles: st.Roles,
			organizations: st.Organizations, companies: st.Companies,
			memberships: st.Memberships, invitations: st.Invitations,
			policies: st.Policies, settings: st.Settings,
			tx: st.TxRunner, locker: memory.NewLocker(),
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.Pool = pool
		s.closers = append(s.closers, pool.Close)
		st := postgres.NewStore(pool)
		repos = repositories{
			users: st.Users, profiles: st.Profiles, roles: st.Roles,
			organizations: st.Organizations, companies: st.Companies,
			memberships: st.Memberships, invitations: st.Invitations,
			policies: st.Policies, settings: st.Settings,
			tx: st.TxRunner, locker: st.Locker,
		}
	}

	// Con Redis el candado por organización se comparte entre réplicas sin ocupar conexiones de Postgres.
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		s.Redis = client
		s.closers = append(s.closers, func() { _ = client.Close() })
		repos.locker = infraredis.NewLocker(client, infraredis.DefaultLockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("candado de recordatorios en Redis")
	}

	mailer := opts.Mailer
	if mailer == nil {
		m, err := mail.NewMailer(cfg.Mail, log)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("proveedor de correo: %w", err)
		}
		mailer = m
	}
	loc, err := cfg.Reminder.Location()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Memberships = repos.memberships
	s.Profiles = repos.profiles
	s.Auth = auth.NewAuthUseCase(repos.tx, repos.users, repos.memberships, clock, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.Org.DefaultMaxSeats)
	s.Policies = usecase.NewPolicyUseCase(repos.policies, clock)
	s.Settings = reminder.NewSettingsResolver(repos.settings, clock)
	s.Scheduler = reminder.NewScheduler(repos.policies, s.Settings, mailer, repos.locker, clock, reminder.Config{
		Location: loc,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	}, log)
	s.Reconciler = membership.NewReconciler(membership.Repositories{
		Organizations: repos.organizations,
		Companies:     repos.companies,
		Memberships:   repos.memberships,
		Invitations:   repos.invitations,
		Profiles:      repos.profiles,
		Roles:         repos.roles,
	}, mailer, clock, membership.Config{
		BaseURL:  cfg.App.BaseURL,
		TTL:      cfg.Invitation.TTL(),
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	}, log)
	return s, nil
}

// Close libera conexiones en orden inverso de apertura.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
