package repository

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// OrganizationRepository define el puerto de persistencia para Organization (DIP).
// GetByID devuelve (nil, nil) si no existe.
type OrganizationRepository interface {
	Create(ctx context.Context, org *entity.Organization) error
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	Delete(ctx context.Context, id string) error
}
