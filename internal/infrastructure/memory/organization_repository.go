package memory

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var (
	_ repository.OrganizationRepository = (*OrganizationRepo)(nil)
	_ repository.CompanyRepository      = (*CompanyRepo)(nil)
)

// OrganizationRepo organizaciones en memoria.
type OrganizationRepo struct {
	db *DB
}

// NewOrganizationRepository construye el repositorio sobre db.
func NewOrganizationRepository(db *DB) *OrganizationRepo {
	return &OrganizationRepo{db: db}
}

func (r *OrganizationRepo) Create(ctx context.Context, org *entity.Organization) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("organizations.Create"); err != nil {
		return err
	}
	if _, exists := r.db.orgs[org.ID]; exists {
		return domain.ErrDuplicate
	}
	clone := *org
	r.db.orgs[org.ID] = &clone
	return nil
}

func (r *OrganizationRepo) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fault("organizations.GetByID"); err != nil {
		return nil, err
	}
	org, ok := r.db.orgs[id]
	if !ok {
		return nil, nil
	}
	clone := *org
	return &clone, nil
}

// Delete elimina la organización junto con sus pólizas, invitaciones y configuración
// (ON DELETE CASCADE en PostgreSQL). Igual que la FK sin cascada de organization_members,
// devuelve domain.ErrConflict mientras alguna membresía la referencie.
func (r *OrganizationRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("organizations.Delete"); err != nil {
		return err
	}
	for _, m := range r.db.memberships {
		if m.OrganizationID == id {
			return domain.ErrConflict
		}
	}
	delete(r.db.orgs, id)
	delete(r.db.settings, id)
	for pid, p := range r.db.policies {
		if p.OrganizationID == id {
			delete(r.db.policies, pid)
		}
	}
	for iid, inv := range r.db.invitations {
		if inv.OrganizationID == id {
			delete(r.db.invitations, iid)
		}
	}
	return nil
}

// CompanyRepo espejo heredado de organizaciones en memoria.
type CompanyRepo struct {
	db *DB
}

// NewCompanyRepository construye el repositorio sobre db.
func NewCompanyRepository(db *DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("companies.Create"); err != nil {
		return err
	}
	clone := *company
	r.db.companies[company.ID] = &clone
	return nil
}

func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("companies.Delete"); err != nil {
		return err
	}
	delete(r.db.companies, id)
	return nil
}

// CompanyExists informa si existe el espejo; solo para pruebas.
func (r *CompanyRepo) CompanyExists(id string) bool {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	_, ok := r.db.companies[id]
	return ok
}
