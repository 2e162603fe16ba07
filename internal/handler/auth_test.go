package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/opengather/gather/internal/middleware"
	"github.com/opengather/gather/internal/model"
	"github.com/opengather/gather/internal/service"
	"github.com/opengather/gather/pkg/jwt"
)

// memUserRepo is an in-memory service.UserRepository for handler tests
type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	nextID  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = "user:" + user.Name
	user.CreatedOn = time.Now()
	user.UpdatedOn = user.CreatedOn
	r.byEmail[user.Email] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == userID {
			u.Hash = &hash
		}
	}
	return nil
}

var handlerTestKey, _ = rsa.GenerateKey(rand.Reader, 2048)

func newTestAuthHandler() (*AuthHandler, *memUserRepo) {
	repo := newMemUserRepo()
	jwtService := jwt.NewTestService(handlerTestKey, "gather", 7*24*time.Hour)
	svc := service.NewAuthService(repo, jwtService)
	return NewAuthHandler(svc, jwtService.GetExpiration()), repo
}

func registerBody(t *testing.T, name, email, password string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", registerBody(t, "alice", "alice@example.com", "correct-horse"))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp struct {
		Data AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.User.Email != "alice@example.com" {
		t.Errorf("user.email = %q, want %q", resp.Data.User.Email, "alice@example.com")
	}
	if resp.Data.Token.AccessToken == "" {
		t.Error("access token missing")
	}
	if resp.Data.Token.ExpiresIn != 7*24*3600 {
		t.Errorf("expires_in = %d, want %d", resp.Data.Token.ExpiresIn, 7*24*3600)
	}
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthHandler()

	first := httptest.NewRequest(http.MethodPost, "/v1/auth/register", registerBody(t, "alice", "alice@example.com", "correct-horse"))
	h.Register(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/v1/auth/register", registerBody(t, "alice2", "alice@example.com", "correct-horse"))
	rec := httptest.NewRecorder()
	h.Register(rec, second)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthHandler()

	reg := httptest.NewRequest(http.MethodPost, "/v1/auth/register", registerBody(t, "alice", "alice@example.com", "correct-horse"))
	h.Register(httptest.NewRecorder(), reg)

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestLoginEndpointBadPassword(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthHandler()

	reg := httptest.NewRequest(http.MethodPost, "/v1/auth/register", registerBody(t, "alice", "alice@example.com", "correct-horse"))
	h.Register(httptest.NewRecorder(), reg)

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong-horse"})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()

	h, repo := newTestAuthHandler()

	reg := httptest.NewRequest(http.MethodPost, "/v1/auth/register", registerBody(t, "alice", "alice@example.com", "correct-horse"))
	h.Register(httptest.NewRecorder(), reg)

	user, _ := repo.GetByEmail(context.Background(), "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, user.ID))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Data UserResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ID != user.ID {
		t.Errorf("id = %q, want %q", resp.Data.ID, user.ID)
	}
}

func TestMeEndpointUnauthenticated(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	t.Parallel()

	h, repo := newTestAuthHandler()

	reg := httptest.NewRequest(http.MethodPost, "/v1/auth/register", registerBody(t, "alice", "alice@example.com", "correct-horse"))
	h.Register(httptest.NewRecorder(), reg)

	user, _ := repo.GetByEmail(context.Background(), "alice@example.com")
	oldHash := *user.Hash

	body, _ := json.Marshal(map[string]string{
		"old_password": "correct-horse",
		"new_password": "battery-staple",
	})
	req := httptest.NewRequest(http.MethodPut, "/v1/auth/password", bytes.NewBuffer(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, user.ID))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if *user.Hash == oldHash {
		t.Error("stored hash unchanged after password change")
	}
}

func TestChangePasswordEndpointWrongOldPassword(t *testing.T) {
	t.Parallel()

	h, repo := newTestAuthHandler()

	reg := httptest.NewRequest(http.MethodPost, "/v1/auth/register", registerBody(t, "alice", "alice@example.com", "correct-horse"))
	h.Register(httptest.NewRecorder(), reg)

	user, _ := repo.GetByEmail(context.Background(), "alice@example.com")

	body, _ := json.Marshal(map[string]string{
		"old_password": "wrong-guess",
		"new_password": "battery-staple",
	})
	req := httptest.NewRequest(http.MethodPut, "/v1/auth/password", bytes.NewBuffer(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, user.ID))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
