package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibot/medibot/internal/platform/auth"
	"github.com/medibot/medibot/internal/platform/db"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// signupRoles are the roles a visitor may choose at signup. Pharmacy admins
// self-register and then submit their pharmacy for approval; super admin is
// granted only by seeding or by an existing super admin.
var signupRoles = map[string]bool{
	auth.RolePatient.String():            true,
	auth.RoleHealthcareProvider.String(): true,
	auth.RolePharmacyAdmin.String():      true,
}

type Service struct {
	users    UserRepository
	profiles ProfileRepository
	tokens   *auth.TokenIssuer
	revoked  *auth.TokenRevocationStore
	runTx    func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(pool *pgxpool.Pool, users UserRepository, profiles ProfileRepository, tokens *auth.TokenIssuer, revoked *auth.TokenRevocationStore) *Service {
	s := &Service{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		revoked:  revoked,
	}
	if pool != nil {
		s.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		}
	} else {
		// Tests run with map-backed repos and no pool.
		s.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return s
}

// Signup creates the user and its profile in one transaction and signs the
// new account in.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if req.Role == "" {
		req.Role = auth.RolePatient.String()
	}
	if !signupRoles[req.Role] {
		return nil, fmt.Errorf("invalid signup role: %s", req.Role)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
	}
	profile := &Profile{
		UserID:   user.ID,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issueSession(user, profile)
}

// Signin verifies credentials and issues a session token.
func (s *Service) Signin(ctx context.Context, req *SigninRequest) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		profile = nil
	}
	return s.issueSession(user, profile)
}

func (s *Service) issueSession(user *User, profile *Profile) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID.String(), user.Email, auth.ParseRole(user.Role))
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
		Profile:   profile,
	}, nil
}

// Signout revokes the current session's token.
func (s *Service) Signout(ctx context.Context) {
	jti := auth.JTIFromContext(ctx)
	if jti == "" || s.revoked == nil {
		return
	}
	// Without the original expiry on hand, hold the revocation for a full
	// token lifetime; the cleanup loop drops it afterwards.
	s.revoked.Revoke(jti, time.Now().Add(s.tokens.TTL()))
}

// Me returns the signed-in user and profile.
func (s *Service) Me(ctx context.Context) (*User, *Profile, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, nil, fmt.Errorf("no signed-in user")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.profiles.GetByUserID(ctx, id)
	if err != nil {
		profile = nil
	}
	return user, profile, nil
}

// UpdateProfile updates the signed-in user's profile.
func (s *Service) UpdateProfile(ctx context.Context, p *Profile) error {
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return fmt.Errorf("no signed-in user")
	}
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	p.UserID = id
	return s.profiles.Update(ctx, p)
}

// -- Super-admin user management --

// UpdateUserProfile edits another user's profile.
func (s *Service) UpdateUserProfile(ctx context.Context, userID uuid.UUID, p *Profile) error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	p.UserID = userID
	return s.profiles.Update(ctx, p)
}

// CreateUser provisions an account on someone's behalf. Any recognized role
// is allowed, and no session is issued for it.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if !auth.ParseRole(req.Role).Valid() {
		return nil, fmt.Errorf("invalid role: %s", req.Role)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
	}
	profile := &Profile{
		UserID:   user.ID,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateUserRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	if !auth.ParseRole(role).Valid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	// The old role still rides in outstanding tokens.
	s.revokeSessions(id)
	return s.users.GetByID(ctx, id)
}

func (s *Service) SetUserActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active {
		s.revokeSessions(id)
	}
	return s.users.GetByID(ctx, id)
}

// revokeSessions cuts off every token the user currently holds. Without
// this a deactivated account would keep API access until its token's
// natural expiry.
func (s *Service) revokeSessions(id uuid.UUID) {
	if s.revoked == nil || s.tokens == nil {
		return
	}
	s.revoked.RevokeAllForUser(id.String(), time.Now().Add(s.tokens.TTL()))
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if auth.UserIDFromContext(ctx) == id.String() {
		return fmt.Errorf("cannot delete your own account")
	}
	return s.users.Delete(ctx, id)
}
