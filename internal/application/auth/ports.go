package auth

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

// SignupRepos repositorios atados a la misma transacción de registro.
type SignupRepos struct {
	Users         repository.UserRepository
	Organizations repository.OrganizationRepository
	Companies     repository.CompanyRepository
	Memberships   repository.MembershipRepository
	Roles         repository.UserRoleRepository
	Profiles      repository.ProfileRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda nada persistido.
type TxRunner interface {
	RunSignup(ctx context.Context, fn func(repos SignupRepos) error) error
}
