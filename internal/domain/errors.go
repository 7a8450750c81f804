package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores terminales del ciclo de membresía e invitaciones: se muestran al usuario y no se reintentan.
var (
	ErrInvitationInvalid     = errors.New("invitación inválida o expirada")
	ErrAlreadyInOrganization = errors.New("el usuario ya pertenece a una organización con otros miembros")
	ErrSeatLimitReached      = errors.New("se alcanzó el límite de asientos de la organización")
	ErrAlreadyInvited        = errors.New("este email ya tiene una invitación pendiente")
	ErrAlreadyMember         = errors.New("el usuario ya es miembro de la organización")
	ErrNotAuthorized         = errors.New("solo los administradores pueden realizar esta acción")
	ErrNoMembership          = errors.New("el usuario no pertenece a ninguna organización")
)

// ErrRecipientNotConfigured la organización no tiene email de notificación configurado.
var ErrRecipientNotConfigured = errors.New("email de notificación no configurado")
