package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	"github.com/AlibekovAA/snapfeed/internal/auth/service"
	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/snapfeed/internal/common/crypto"
)

func setupRealAuthService(t *testing.T) (*service.AuthService, *accountrepo.MemoryRepository, *clock.MockClock) {
	t.Helper()
	repo := accountrepo.NewMemoryRepository()
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	svc := service.NewAuthService(
		repo,
		commoncrypto.NewBcryptHasher(bcrypt.MinCost),
		commoncrypto.NewUUIDGenerator(),
		mockClock,
		newTestLogger(),
	)
	return svc, repo, mockClock
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	svc, repo, hasher, _, _ := setupAuthService(t)
	repo.findByEmailFunc = func(ctx context.Context, email string) (accountdomain.Account, error) {
		return accountdomain.Account{
			ID:           "user-1",
			Email:        email,
			Username:     "alice",
			Name:         "Alice",
			PasswordHash: strPtr("hashed_password123"),
		}, nil
	}

	identity, err := svc.Authenticate(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if identity.ID != "user-1" || identity.Username != "alice" {
		t.Errorf("unexpected identity %+v", identity)
	}
	if hasher.compares != 1 {
		t.Errorf("expected one comparison, got %d", hasher.compares)
	}
}

func TestAuthService_Authenticate_UniformFailures(t *testing.T) {
	tests := []struct {
		name    string
		account *accountdomain.Account
	}{
		{"unknown email", nil},
		{"federated account without password", &accountdomain.Account{ID: "user-2", Email: "bob@example.com", Username: "bob"}},
		{"wrong password", &accountdomain.Account{ID: "user-3", Email: "bob@example.com", Username: "bob", PasswordHash: strPtr("hashed_other")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, hasher, _, _ := setupAuthService(t)
			repo.findByEmailFunc = func(ctx context.Context, email string) (accountdomain.Account, error) {
				if tt.account == nil {
					return accountdomain.Account{}, accountrepo.ErrAccountNotFound
				}
				return *tt.account, nil
			}

			_, err := svc.Authenticate(context.Background(), "bob@example.com", "password123")
			if !errors.Is(err, service.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if err.Error() != service.ErrInvalidCredentials.Error() {
				t.Errorf("failure must be indistinguishable, got %q", err.Error())
			}
			if hasher.compares == 0 {
				t.Error("expected a hash comparison on every failure path")
			}
		})
	}
}

func TestAuthService_Authenticate_EmptyInputs(t *testing.T) {
	svc, repo, _, _, _ := setupAuthService(t)
	repo.findByEmailFunc = func(ctx context.Context, email string) (accountdomain.Account, error) {
		t.Fatal("lookup must not happen for empty input")
		return accountdomain.Account{}, nil
	}

	if _, err := svc.Authenticate(context.Background(), "", "pw"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for empty email, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "a@example.com", ""); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}

func TestAuthService_Authenticate_LookupFailure(t *testing.T) {
	svc, repo, _, _, _ := setupAuthService(t)
	repo.findByEmailFunc = func(ctx context.Context, email string) (accountdomain.Account, error) {
		return accountdomain.Account{}, errors.New("timeout")
	}

	_, err := svc.Authenticate(context.Background(), "a@example.com", "pw")
	if errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatal("storage failure must not look like bad credentials")
	}
}

func TestAuthService_Authenticate_ExactMatch(t *testing.T) {
	svc, _, _ := setupRealAuthService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, service.SignupInput{
		Email:    "carol@example.com",
		Username: "carol",
		Password: "Hunter22",
		Name:     "Carol",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "carol@example.com", "Hunter22"); err != nil {
		t.Fatalf("expected correct password to authenticate, got %v", err)
	}

	for _, wrong := range []string{"Hunter23", "hunter22", "HUNTER22", "Hunter22 ", " Hunter22", "Hunter2"} {
		if _, err := svc.Authenticate(ctx, "carol@example.com", wrong); !errors.Is(err, service.ErrInvalidCredentials) {
			t.Errorf("expected %q to fail, got %v", wrong, err)
		}
	}
}

func TestAuthService_SharedPasswordStoredIndependently(t *testing.T) {
	svc, repo, _ := setupRealAuthService(t)
	ctx := context.Background()

	for _, u := range []string{"dave", "erin"} {
		if _, err := svc.Signup(ctx, service.SignupInput{
			Email:    u + "@example.com",
			Username: u,
			Password: "same-password-1",
			Name:     u,
		}); err != nil {
			t.Fatalf("signup %s: %v", u, err)
		}
	}

	dave, _ := repo.FindByEmail(ctx, "dave@example.com")
	erin, _ := repo.FindByEmail(ctx, "erin@example.com")
	if *dave.PasswordHash == *erin.PasswordHash {
		t.Fatal("expected distinct salted hashes")
	}

	for _, email := range []string{"dave@example.com", "erin@example.com"} {
		if _, err := svc.Authenticate(ctx, email, "same-password-1"); err != nil {
			t.Errorf("%s should authenticate: %v", email, err)
		}
	}
}
