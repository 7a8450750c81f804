package repository

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	// Create devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// ProfileRepository perfiles de usuario (organización actual).
type ProfileRepository interface {
	// Upsert crea el perfil o lo actualiza si ya existe para ese usuario.
	Upsert(ctx context.Context, p *entity.Profile) error
	GetByUser(ctx context.Context, userID string) (*entity.Profile, error)
}

// UserRoleRepository registros de rol por usuario.
type UserRoleRepository interface {
	Upsert(ctx context.Context, r *entity.UserRole) error
	DeleteByUser(ctx context.Context, userID string) error
}
