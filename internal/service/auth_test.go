package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/opengather/gather/internal/model"
	"github.com/opengather/gather/pkg/jwt"
)

// mockUserRepo is a func-field mock of UserRepository
type mockUserRepo struct {
	createFunc         func(ctx context.Context, user *model.User) error
	getByIDFunc        func(ctx context.Context, id string) (*model.User, error)
	getByEmailFunc     func(ctx context.Context, email string) (*model.User, error)
	updatePasswordFunc func(ctx context.Context, userID, hash string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "user:test"
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, userID, hash)
	}
	return nil
}

var testSigningKey, _ = rsa.GenerateKey(rand.Reader, 2048)

func newTestAuthService(repo UserRepository) *AuthService {
	jwtService := jwt.NewTestService(testSigningKey, "gather", 7*24*time.Hour)
	return NewAuthService(repo, jwtService)
}

// ===== Register =====

func TestRegister(t *testing.T) {
	t.Parallel()

	var createdUser *model.User
	repo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			user.ID = "user:new"
			createdUser = user
			return nil
		},
	}
	svc := newTestAuthService(repo)

	result, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.COM",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized %q", result.User.Email, "alice@example.com")
	}
	if result.User.Role != model.UserRoleUser {
		t.Errorf("Role = %q, want %q", result.User.Role, model.UserRoleUser)
	}
	if result.Token == "" {
		t.Error("token not issued")
	}
	if createdUser.Hash == nil || *createdUser.Hash == "correct-horse" {
		t.Error("password stored unhashed")
	}

	claims, err := svc.ValidateAccessToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.UserID != "user:new" {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, "user:new")
	}
	if claims.Role != "user" {
		t.Errorf("claims.Role = %q, want %q", claims.Role, "user")
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(&mockUserRepo{})

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"missing name", RegisterRequest{Email: "a@b.com", Password: "long enough"}, ErrNameRequired},
		{"invalid email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "long enough"}, ErrInvalidEmail},
		{"missing password", RegisterRequest{Name: "A", Email: "a@b.com"}, ErrPasswordRequired},
		{"short password", RegisterRequest{Name: "A", Email: "a@b.com", Password: "short"}, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepo{
		getByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user:existing", Email: email}, nil
		},
	}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("Register() error = %v, want ErrEmailAlreadyExists", err)
	}
}

// ===== Login =====

func TestLogin(t *testing.T) {
	t.Parallel()

	hash, err := hashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hashPassword() error = %v", err)
	}

	repo := &mockUserRepo{
		getByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:    "user:alice",
				Name:  "Alice",
				Email: email,
				Hash:  &hash,
				Role:  model.UserRoleUser,
			}, nil
		},
	}
	svc := newTestAuthService(repo)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != "user:alice" {
		t.Errorf("User.ID = %q, want %q", result.User.ID, "user:alice")
	}
	if result.Token == "" {
		t.Error("token not issued")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	hash, _ := hashPassword("correct-horse")
	repo := &mockUserRepo{
		getByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user:alice", Email: email, Hash: &hash}, nil
		},
	}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-horse",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-pass",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

// ===== GetUserByID =====

func TestGetUserByIDNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(&mockUserRepo{})

	_, err := svc.GetUserByID(context.Background(), "user:missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrUserNotFound", err)
	}
}

// ===== ChangePassword =====

func TestChangePassword(t *testing.T) {
	t.Parallel()

	hash, _ := hashPassword("old-password")
	var newHash string
	repo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Hash: &hash}, nil
		},
		updatePasswordFunc: func(ctx context.Context, userID, h string) error {
			newHash = h
			return nil
		},
	}
	svc := newTestAuthService(repo)

	err := svc.ChangePassword(context.Background(), "user:alice", "old-password", "new-password")
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if !checkPassword("new-password", newHash) {
		t.Error("stored hash does not match new password")
	}
}

func TestChangePasswordWrongOld(t *testing.T) {
	t.Parallel()

	hash, _ := hashPassword("old-password")
	repo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Hash: &hash}, nil
		},
	}
	svc := newTestAuthService(repo)

	err := svc.ChangePassword(context.Background(), "user:alice", "wrong", "new-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ChangePassword() error = %v, want ErrInvalidCredentials", err)
	}
}

// ===== Validation helpers =====

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{"a@b.co", true},
		{"", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"alice@", false},
		{"alice@example", false},
	}

	for _, tt := range tests {
		if got := isValidEmail(tt.email); got != tt.want {
			t.Errorf("isValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
