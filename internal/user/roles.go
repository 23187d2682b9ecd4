package user

type Role string

const (
	RoleConsumer   Role = "consumer"
	RoleResearcher Role = "researcher"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleConsumer, RoleResearcher, RoleAdmin:
		return true
	}
	return false
}

// RequiresVerification reports whether the role needs a supplementary
// profile before the account counts as complete. Consumers (and admins,
// which are provisioned out of band) finish after the basic step.
func (r Role) RequiresVerification() bool {
	return r == RoleResearcher
}

// ProfileTable returns the table holding the role's supplementary profile,
// or "" for roles without one.
func (r Role) ProfileTable() string {
	if r == RoleResearcher {
		return "researcher_profiles"
	}
	return ""
}
