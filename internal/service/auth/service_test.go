package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/tejakusireddy/getonstack/internal/domain"
	"github.com/tejakusireddy/getonstack/internal/repository"
	"github.com/tejakusireddy/getonstack/pkg/config"
)

type fakeUserRepo struct {
	byEmail  map[string]*domain.User
	byGitHub map[string]*domain.User
	byID     map[string]*domain.User
	updated  []*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:  map[string]*domain.User{},
		byGitHub: map[string]*domain.User{},
		byID:     map[string]*domain.User{},
	}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *domain.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	if user.GitHubID != "" {
		f.byGitHub[user.GitHubID] = user
	}
	return nil
}

func (f *fakeUserRepo) UpdateUserGitHub(ctx context.Context, user *domain.User) error {
	f.updated = append(f.updated, user)
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetUserByGitHubID(ctx context.Context, githubID string) (*domain.User, error) {
	if user, ok := f.byGitHub[githubID]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func testConfig() config.APIConfig {
	return config.APIConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSignupThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := New(repo, nil, discardLogger(), testConfig())

	user, token, err := svc.Signup(context.Background(), " Dev@Example.com ", "hunter22", "Dev")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.Email != "dev@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", user.Email)
	}
	if token.AccessToken == "" || token.TokenType != "bearer" {
		t.Fatalf("token = %+v", token)
	}

	loggedIn, _, err := svc.Login(context.Background(), "dev@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned a different user")
	}

	if _, _, err := svc.Login(context.Background(), "dev@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthorizeRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := New(repo, nil, discardLogger(), testConfig())

	user, token, err := svc.Signup(context.Background(), "dev@example.com", "hunter22", "Dev")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	resolved, err := svc.Authorize(context.Background(), token.AccessToken)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("authorize resolved %q, want %q", resolved.ID, user.ID)
	}

	if _, err := svc.Authorize(context.Background(), "not-a-token"); err == nil {
		t.Fatalf("garbage token must be rejected")
	}
	if _, err := svc.Authorize(context.Background(), ""); err == nil {
		t.Fatalf("empty token must be rejected")
	}
}

func fakeGitHub(t *testing.T) *GitHubClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_test"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "login": "octo", "name": "Octo Cat"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"email":"octo@example.com","primary":true}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewGitHubClient("client-id", "client-secret")
	client.baseOAuthURL = server.URL + "/login/oauth/access_token"
	client.baseAPIURL = server.URL
	return client
}

func TestGitHubCallbackCreatesUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := New(repo, fakeGitHub(t), discardLogger(), testConfig())

	user, token, err := svc.HandleGitHubCallback(context.Background(), "oauth-code")
	if err != nil {
		t.Fatalf("HandleGitHubCallback: %v", err)
	}
	if user.GitHubID != "42" || user.GitHubUsername != "octo" {
		t.Fatalf("user = %+v", user)
	}
	if user.Email != "octo@example.com" {
		t.Fatalf("email = %q", user.Email)
	}
	if token.AccessToken == "" {
		t.Fatalf("callback must issue a token")
	}
}

func TestGitHubCallbackUpdatesExistingUser(t *testing.T) {
	repo := newFakeUserRepo()
	existing := &domain.User{ID: "user-1", Email: "octo@example.com", GitHubID: "42", GitHubUsername: "old-login"}
	if err := repo.CreateUser(context.Background(), existing); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc := New(repo, fakeGitHub(t), discardLogger(), testConfig())

	user, _, err := svc.HandleGitHubCallback(context.Background(), "oauth-code")
	if err != nil {
		t.Fatalf("HandleGitHubCallback: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("callback must reuse the existing account, got %q", user.ID)
	}
	if user.GitHubUsername != "octo" || len(repo.updated) != 1 {
		t.Fatalf("profile refresh missing: %+v updated=%d", user, len(repo.updated))
	}
}
