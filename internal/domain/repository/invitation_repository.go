package repository

import (
	"context"
	"time"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// InvitationRepository almacén de tokens de invitación.
type InvitationRepository interface {
	// Create devuelve domain.ErrAlreadyInvited si ya hay una invitación pendiente para (organización, email).
	Create(ctx context.Context, inv *entity.Invitation) error
	GetByToken(ctx context.Context, token string) (*entity.Invitation, error)
	ListPending(ctx context.Context, organizationID string, now time.Time) ([]*entity.Invitation, error)
	// MarkAccepted fija accepted_at solo si sigue en NULL; false si otra petición ya la aceptó.
	MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error)
	// DeleteExpired purga las invitaciones vencidas y no aceptadas de (organización, email).
	DeleteExpired(ctx context.Context, organizationID, email string, now time.Time) (int64, error)
	Delete(ctx context.Context, organizationID, id string) error
}
