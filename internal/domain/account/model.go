package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/medibot/medibot/internal/platform/auth"
)

// User maps to the users table and carries the credentials and role for
// one account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile maps to the profiles table. One row is created per user at
// signup, in the same transaction as the user row.
type Profile struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SignupRequest is the payload for POST /auth/signup.
type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role"`
}

// CreateUserRequest is the super-admin payload for POST /admin/users.
// Unlike signup it accepts any recognized role.
type CreateUserRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role"`
}

// SigninRequest is the payload for POST /auth/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned on successful signup or signin.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
	Profile   *Profile  `json:"profile,omitempty"`
}

// Dashboard tells the client which surface to render for the signed-in
// account and which collections that surface works with. Exactly one
// dashboard exists per recognized role.
type Dashboard struct {
	Role        string   `json:"role"`
	Dashboard   string   `json:"dashboard"`
	Collections []string `json:"collections"`
}

// DashboardForRole resolves the landing surface for a role. Unknown roles
// get no dashboard; callers must reject them.
func DashboardForRole(role auth.Role) (Dashboard, bool) {
	switch role {
	case auth.RoleSuperAdmin:
		return Dashboard{
			Role:        role.String(),
			Dashboard:   "super_admin",
			Collections: []string{"users", "pharmacies", "audit_log", "reports"},
		}, true
	case auth.RolePharmacyAdmin:
		return Dashboard{
			Role:        role.String(),
			Dashboard:   "pharmacy_admin",
			Collections: []string{"medicines", "sales", "staff", "reports"},
		}, true
	case auth.RolePatient:
		return Dashboard{
			Role:        role.String(),
			Dashboard:   "patient_portal",
			Collections: []string{"profile", "vitals", "appointments", "emergency_contacts", "prescriptions"},
		}, true
	case auth.RoleHealthcareProvider:
		return Dashboard{
			Role:        role.String(),
			Dashboard:   "provider",
			Collections: []string{"prescriptions"},
		}, true
	default:
		return Dashboard{}, false
	}
}

// RoleUpdateRequest is the payload for the super-admin role change endpoint.
type RoleUpdateRequest struct {
	Role string `json:"role"`
}

// ActiveUpdateRequest is the payload for activating or deactivating a user.
type ActiveUpdateRequest struct {
	Active bool `json:"active"`
}
