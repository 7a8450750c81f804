package memory

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/application/auth"
)

var _ auth.TxRunner = (*TxRunner)(nil)

// TxRunner emula una transacción: toma una instantánea y la restaura si fn falla.
// No aísla de escrituras concurrentes; basta para desarrollo local y pruebas.
type TxRunner struct {
	db *DB
}

// NewTxRunner construye el runner sobre db.
func NewTxRunner(db *DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunSignup ejecuta fn con los repositorios de registro.
func (r *TxRunner) RunSignup(ctx context.Context, fn func(repos auth.SignupRepos) error) error {
	snap := r.db.takeSnapshot()
	err := fn(auth.SignupRepos{
		Users:         NewUserRepository(r.db),
		Organizations: NewOrganizationRepository(r.db),
		Companies:     NewCompanyRepository(r.db),
		Memberships:   NewMembershipRepository(r.db),
		Roles:         NewUserRoleRepository(r.db),
		Profiles:      NewProfileRepository(r.db),
	})
	if err != nil {
		r.db.restore(snap)
		return err
	}
	return nil
}
