package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/policyminders-api/internal/application/auth"
	"github.com/jhoicas/policyminders-api/internal/application/membership"
	"github.com/jhoicas/policyminders-api/internal/application/reminder"
	"github.com/jhoicas/policyminders-api/internal/application/usecase"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	PolicyUC    *usecase.PolicyUseCase
	Reconciler  *membership.Reconciler
	Settings    *reminder.SettingsResolver
	Scheduler   *reminder.Scheduler
	Memberships membershipLookup
	Profiles    profileLookup
	Health      *HealthHandler // nil = sin /health
	JWTSecret   string
	CronSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Health != nil {
		app.Get("/health", deps.Health.Health)
	}

	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)
	requireMember := RequireMembership(deps.Memberships)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Invitaciones: la consulta es pública; emitir y aceptar requieren token pero no membresía
	// (el reconciliador valida el rol del emisor y quien acepta puede venir sin organización).
	invitations := api.Group("/invitations")
	invitationHandler := NewInvitationHandler(deps.Reconciler, deps.Profiles)
	invitations.Post("/", requireAuth, invitationHandler.Create)
	invitations.Get("/:token", invitationHandler.Info)
	invitations.Post("/:token/accept", requireAuth, invitationHandler.Accept)

	// Disparador programado (secreto compartido, sin JWT)
	reminderHandler := NewReminderHandler(deps.Scheduler, deps.CronSecret)
	api.Post("/reminders/run", reminderHandler.Run)
	api.Post("/reminders/send", requireAuth, requireMember, reminderHandler.Send)

	// Policies (protegido, aislado por organización)
	policies := api.Group("/policies", requireAuth, requireMember)
	policyHandler := NewPolicyHandler(deps.PolicyUC)
	policies.Post("/", policyHandler.Create)
	policies.Get("/", policyHandler.List)
	policies.Get("/:id", policyHandler.GetByID)
	policies.Put("/:id", policyHandler.Update)
	policies.Delete("/:id", policyHandler.Delete)

	// Team (listados para cualquier miembro; cambios solo admin, el caso de uso lo vuelve a validar)
	team := api.Group("/team", requireAuth, requireMember)
	teamHandler := NewTeamHandler(deps.Reconciler)
	team.Get("/members", teamHandler.ListMembers)
	team.Put("/members/:id/role", adminOnly, teamHandler.UpdateRole)
	team.Delete("/members/:id", adminOnly, teamHandler.RemoveMember)
	team.Get("/invitations", teamHandler.ListInvitations)
	team.Delete("/invitations/:id", adminOnly, teamHandler.RevokeInvitation)

	// Settings
	settings := api.Group("/settings", requireAuth, requireMember)
	settingsHandler := NewSettingsHandler(deps.Settings)
	settings.Get("/", settingsHandler.Get)
	settings.Put("/", adminOnly, settingsHandler.Save)
}
