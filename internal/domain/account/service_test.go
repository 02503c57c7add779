package account

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medibot/medibot/internal/platform/auth"
)

// -- Mock Repositories --

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	u, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Role = role
	return nil
}

func (m *mockUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Active = active
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		result = append(result, u)
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

type mockProfileRepo struct {
	profiles map[uuid.UUID]*Profile
	failNext bool
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[uuid.UUID]*Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, p *Profile) error {
	if m.failNext {
		m.failNext = false
		return pgx.ErrTxClosed
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.profiles[p.UserID] = p
	return nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) Update(_ context.Context, p *Profile) error {
	if _, ok := m.profiles[p.UserID]; !ok {
		return pgx.ErrNoRows
	}
	m.profiles[p.UserID] = p
	return nil
}

func newTestService() (*Service, *mockUserRepo, *mockProfileRepo) {
	users := newMockUserRepo()
	profiles := newMockProfileRepo()
	tokens := auth.NewTokenIssuer([]byte("test-signing-key-0123456789abcdef"), "medibot-test", time.Hour)
	revoked := auth.NewTokenRevocationStore()
	return NewService(nil, users, profiles, tokens, revoked), users, profiles
}

// -- Tests --

func TestSignup(t *testing.T) {
	svc, users, profiles := newTestService()

	session, err := svc.Signup(context.Background(), &SignupRequest{
		Email:    "Pat@Example.com",
		Password: "secret123",
		FullName: "Pat Example",
		Role:     "patient",
	})
	if err != nil {
		t.Fatalf("Signup() error: %v", err)
	}
	if session.Token == "" {
		t.Error("expected a session token")
	}
	if session.User.Email != "pat@example.com" {
		t.Errorf("expected lowercased email, got %s", session.User.Email)
	}
	if session.User.PasswordHash == "secret123" {
		t.Error("password stored in plaintext")
	}
	if !session.User.Active {
		t.Error("expected new account to be active")
	}
	if len(users.users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users.users))
	}

	// The profile row is created alongside the user.
	p, err := profiles.GetByUserID(context.Background(), session.User.ID)
	if err != nil {
		t.Fatalf("expected profile row: %v", err)
	}
	if p.FullName != "Pat Example" {
		t.Errorf("expected profile name Pat Example, got %s", p.FullName)
	}
}

func TestSignup_DefaultsToPatient(t *testing.T) {
	svc, _, _ := newTestService()

	session, err := svc.Signup(context.Background(), &SignupRequest{
		Email:    "p@example.com",
		Password: "secret123",
		FullName: "P",
	})
	if err != nil {
		t.Fatalf("Signup() error: %v", err)
	}
	if session.User.Role != "patient" {
		t.Errorf("expected default role patient, got %s", session.User.Role)
	}
}

func TestSignup_PharmacyAdminAllowed(t *testing.T) {
	svc, _, _ := newTestService()

	sess, err := svc.Signup(context.Background(), &SignupRequest{
		Email:    "owner@pharmacy.example",
		Password: "secret123",
		FullName: "Owner",
		Role:     "pharmacy_admin",
	})
	if err != nil {
		t.Fatalf("pharmacy admin signup failed: %v", err)
	}
	if sess.User.Role != "pharmacy_admin" {
		t.Errorf("role = %q, want pharmacy_admin", sess.User.Role)
	}
}

func TestSignup_RejectsSuperAdmin(t *testing.T) {
	svc, _, _ := newTestService()

	for _, role := range []string{"super_admin", "owner"} {
		_, err := svc.Signup(context.Background(), &SignupRequest{
			Email:    "x@example.com",
			Password: "secret123",
			FullName: "X",
			Role:     role,
		})
		if err == nil {
			t.Errorf("expected signup with role %s to be rejected", role)
		}
	}
}

func TestCreateUser_AllowsAdminRoles(t *testing.T) {
	svc, _, profiles := newTestService()

	user, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Email:    "admin@pharmacy.example",
		Password: "secret123",
		FullName: "Pharmacy Admin",
		Role:     "pharmacy_admin",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Role != "pharmacy_admin" {
		t.Errorf("role = %q, want pharmacy_admin", user.Role)
	}
	if _, ok := profiles.profiles[user.ID]; !ok {
		t.Error("expected a profile row for the new user")
	}
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Email:    "x@example.com",
		Password: "secret123",
		FullName: "X",
		Role:     "janitor",
	})
	if err == nil {
		t.Error("expected unknown role to be rejected")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	req := &SignupRequest{Email: "dup@example.com", Password: "secret123", FullName: "Dup"}
	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, err := svc.Signup(context.Background(), req); err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignup_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []SignupRequest{
		{Email: "", Password: "secret123", FullName: "A"},
		{Email: "not-an-email", Password: "secret123", FullName: "A"},
		{Email: "a@b.c", Password: "short", FullName: "A"},
		{Email: "a@b.c", Password: "secret123", FullName: "  "},
	}
	for i, req := range cases {
		if _, err := svc.Signup(context.Background(), &req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestSignin(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Signup(context.Background(), &SignupRequest{
		Email: "pat@example.com", Password: "secret123", FullName: "Pat",
	}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	session, err := svc.Signin(context.Background(), &SigninRequest{
		Email: "PAT@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Signin() error: %v", err)
	}
	if session.Token == "" {
		t.Error("expected a session token")
	}
	if session.Profile == nil {
		t.Error("expected profile on session")
	}
}

func TestSignin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Signup(context.Background(), &SignupRequest{
		Email: "pat@example.com", Password: "secret123", FullName: "Pat",
	}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	_, err := svc.Signin(context.Background(), &SigninRequest{
		Email: "pat@example.com", Password: "wrong-pass",
	})
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Signin(context.Background(), &SigninRequest{
		Email: "nobody@example.com", Password: "secret123",
	})
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignin_DisabledAccount(t *testing.T) {
	svc, users, _ := newTestService()

	session, err := svc.Signup(context.Background(), &SignupRequest{
		Email: "pat@example.com", Password: "secret123", FullName: "Pat",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err := users.SetActive(context.Background(), session.User.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	_, err = svc.Signin(context.Background(), &SigninRequest{
		Email: "pat@example.com", Password: "secret123",
	})
	if err != ErrAccountDisabled {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestSignup_ProfileFailureRollsBackNothing(t *testing.T) {
	svc, _, profiles := newTestService()
	profiles.failNext = true

	_, err := svc.Signup(context.Background(), &SignupRequest{
		Email: "pat@example.com", Password: "secret123", FullName: "Pat",
	})
	if err == nil {
		t.Fatal("expected signup to fail when the profile insert fails")
	}
}

func TestUpdateUserRole(t *testing.T) {
	svc, users, _ := newTestService()

	u := &User{Email: "x@example.com", PasswordHash: "h", Role: "patient", Active: true}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	updated, err := svc.UpdateUserRole(context.Background(), u.ID, "pharmacy_admin")
	if err != nil {
		t.Fatalf("UpdateUserRole() error: %v", err)
	}
	if updated.Role != "pharmacy_admin" {
		t.Errorf("expected role pharmacy_admin, got %s", updated.Role)
	}
}

func TestUpdateUserRole_InvalidRole(t *testing.T) {
	svc, users, _ := newTestService()

	u := &User{Email: "x@example.com", PasswordHash: "h", Role: "patient", Active: true}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := svc.UpdateUserRole(context.Background(), u.ID, "godmode"); err == nil {
		t.Error("expected invalid role to be rejected")
	}
}

func TestSetUserActive_RevokesSessions(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockProfileRepo()
	tokens := auth.NewTokenIssuer([]byte("test-signing-key-0123456789abcdef"), "medibot-test", time.Hour)
	revoked := auth.NewTokenRevocationStore()
	defer revoked.Close()
	svc := NewService(nil, users, profiles, tokens, revoked)

	sess, err := svc.Signup(context.Background(), &SignupRequest{
		Email: "pat@example.com", Password: "secret123", FullName: "Pat",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	claims, err := tokens.Verify(sess.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	if _, err := svc.SetUserActive(context.Background(), sess.User.ID, false); err != nil {
		t.Fatalf("SetUserActive failed: %v", err)
	}
	if !revoked.IsRevokedForUser(claims.Subject, claims.IssuedAt.Time) {
		t.Error("expected the pre-disable token to be revoked")
	}
}

func TestUpdateUserRole_RevokesSessions(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockProfileRepo()
	tokens := auth.NewTokenIssuer([]byte("test-signing-key-0123456789abcdef"), "medibot-test", time.Hour)
	revoked := auth.NewTokenRevocationStore()
	defer revoked.Close()
	svc := NewService(nil, users, profiles, tokens, revoked)

	sess, err := svc.Signup(context.Background(), &SignupRequest{
		Email: "pat@example.com", Password: "secret123", FullName: "Pat",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	claims, _ := tokens.Verify(sess.Token)

	if _, err := svc.UpdateUserRole(context.Background(), sess.User.ID, "healthcare_provider"); err != nil {
		t.Fatalf("UpdateUserRole failed: %v", err)
	}
	if !revoked.IsRevokedForUser(claims.Subject, claims.IssuedAt.Time) {
		t.Error("expected tokens carrying the old role to be revoked")
	}
}

func TestDeleteUser_CannotDeleteSelf(t *testing.T) {
	svc, users, _ := newTestService()

	u := &User{Email: "admin@example.com", PasswordHash: "h", Role: "super_admin", Active: true}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	ctx := auth.ContextWithUser(context.Background(), u.ID.String(), auth.RoleSuperAdmin)
	if err := svc.DeleteUser(ctx, u.ID); err == nil {
		t.Error("expected self-deletion to be rejected")
	}
}

func TestDashboardForRole(t *testing.T) {
	cases := []struct {
		role      auth.Role
		dashboard string
		ok        bool
	}{
		{auth.RoleSuperAdmin, "super_admin", true},
		{auth.RolePharmacyAdmin, "pharmacy_admin", true},
		{auth.RolePatient, "patient_portal", true},
		{auth.RoleHealthcareProvider, "provider", true},
		{auth.RoleUnknown, "", false},
		{auth.Role("legacy_admin"), "", false},
	}

	for _, tc := range cases {
		d, ok := DashboardForRole(tc.role)
		if ok != tc.ok {
			t.Errorf("DashboardForRole(%q) ok = %v, want %v", tc.role, ok, tc.ok)
			continue
		}
		if ok && d.Dashboard != tc.dashboard {
			t.Errorf("DashboardForRole(%q) = %q, want %q", tc.role, d.Dashboard, tc.dashboard)
		}
		if ok && len(d.Collections) == 0 {
			t.Errorf("DashboardForRole(%q) has no collections", tc.role)
		}
	}
}
