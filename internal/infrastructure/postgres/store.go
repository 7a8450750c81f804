package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Store agrupa los repositorios PostgreSQL construidos sobre un mismo pool.
type Store struct {
	Pool          *pgxpool.Pool
	Users         *UserRepo
	Profiles      *ProfileRepo
	Roles         *UserRoleRepo
	Organizations *OrganizationRepo
	Companies     *CompanyRepo
	Memberships   *MembershipRepo
	Invitations   *InvitationRepo
	Policies      *PolicyRepo
	Settings      *NotificationSettingRepo
	TxRunner      *TxRunner
	Locker        *AdvisoryLocker
}

// NewStore construye todos los repositorios sobre pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Pool:          pool,
		Users:         NewUserRepository(pool),
		Profiles:      NewProfileRepository(pool),
		Roles:         NewUserRoleRepository(pool),
		Organizations: NewOrganizationRepository(pool),
		Companies:     NewCompanyRepository(pool),
		Memberships:   NewMembershipRepository(pool),
		Invitations:   NewInvitationRepository(pool),
		Policies:      NewPolicyRepository(pool),
		Settings:      NewNotificationSettingRepository(pool),
		TxRunner:      NewTxRunner(pool),
		Locker:        NewAdvisoryLocker(pool),
	}
}
