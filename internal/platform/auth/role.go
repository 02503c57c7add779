package auth

// Role identifies which part of the application an account may use.
type Role string

const (
	RolePatient            Role = "patient"
	RolePharmacyAdmin      Role = "pharmacy_admin"
	RoleSuperAdmin         Role = "super_admin"
	RoleHealthcareProvider Role = "healthcare_provider"
	RoleUnknown            Role = ""
)

// ParseRole maps a stored role string to a Role. Anything outside the known
// set maps to RoleUnknown; callers must treat RoleUnknown as unauthorized
// rather than falling back to a default role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RolePatient, RolePharmacyAdmin, RoleSuperAdmin, RoleHealthcareProvider:
		return Role(s)
	default:
		return RoleUnknown
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r != RoleUnknown && ParseRole(string(r)) == r
}

func (r Role) String() string {
	return string(r)
}
