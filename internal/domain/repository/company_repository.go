package repository

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// CompanyRepository persistencia del espejo heredado de cada organización.
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	Delete(ctx context.Context, id string) error
}
