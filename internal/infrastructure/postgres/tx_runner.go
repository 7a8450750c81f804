package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/policyminders-api/internal/application/auth"
)

var _ auth.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSignup inicia una transacción, ejecuta fn con los repos de registro atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunSignup(ctx context.Context, fn func(repos auth.SignupRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := auth.SignupRepos{
		Users:         NewUserRepository(tx),
		Organizations: NewOrganizationRepository(tx),
		Companies:     NewCompanyRepository(tx),
		Memberships:   NewMembershipRepository(tx),
		Roles:         NewUserRoleRepository(tx),
		Profiles:      NewProfileRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
