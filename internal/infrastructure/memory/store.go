package memory

// Store agrupa los repositorios en memoria construidos sobre un mismo DB.
type Store struct {
	DB            *DB
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
}

// NewStore crea un DB vacío con todos sus repositorios.
func NewStore() *Store {
	db := NewDB()
	return &Store{
		DB:            db,
		Users:         NewUserRepository(db),
		Profiles:      NewProfileRepository(db),
		Roles:         NewUserRoleRepository(db),
		Organizations: NewOrganizationRepository(db),
		Companies:     NewCompanyRepository(db),
		Memberships:   NewMembershipRepository(db),
		Invitations:   NewInvitationRepository(db),
		Policies:      NewPolicyRepository(db),
		Settings:      NewNotificationSettingRepository(db),
		TxRunner:      NewTxRunner(db),
	}
}
