package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	"github.com/AlibekovAA/snapfeed/internal/auth/service"
	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

type mockAccountRepo struct {
	createFunc         func(ctx context.Context, account accountdomain.Account) error
	findByEmailFunc    func(ctx context.Context, email string) (accountdomain.Account, error)
	findByUsernameFunc func(ctx context.Context, username string) (accountdomain.Account, error)
	findByIDFunc       func(ctx context.Context, id accountdomain.ID) (accountdomain.Account, error)
	usernameExistsFunc func(ctx context.Context, username string) (bool, error)
	updateProfileFunc  func(ctx context.Context, id accountdomain.ID, update accountdomain.ProfileUpdate) (accountdomain.Account, error)
}

func (m *mockAccountRepo) Create(ctx context.Context, account accountdomain.Account) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, account)
	}
	return nil
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (accountdomain.Account, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return accountdomain.Account{}, accountrepo.ErrAccountNotFound
}

func (m *mockAccountRepo) FindByUsername(ctx context.Context, username string) (accountdomain.Account, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return accountdomain.Account{}, accountrepo.ErrAccountNotFound
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id accountdomain.ID) (accountdomain.Account, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return accountdomain.Account{}, accountrepo.ErrAccountNotFound
}

func (m *mockAccountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	if m.usernameExistsFunc != nil {
		return m.usernameExistsFunc(ctx, username)
	}
	return false, nil
}

func (m *mockAccountRepo) UpdateProfile(ctx context.Context, id accountdomain.ID, update accountdomain.ProfileUpdate) (accountdomain.Account, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, id, update)
	}
	return accountdomain.Account{}, accountrepo.ErrAccountNotFound
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
	compares    int
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	m.compares++
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed_"+password {
		return errMismatch
	}
	return nil
}

type mismatchError struct{}

func (mismatchError) Error() string { return "password mismatch" }

var errMismatch error = mismatchError{}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "test-id-123", nil
}

func newTestLogger() *logger.Logger {
	return logger.NewWriter(&strings.Builder{}, "test", "ERROR")
}

func setupAuthService(t *testing.T) (*service.AuthService, *mockAccountRepo, *mockHasher, *mockIDGenerator, *clock.MockClock) {
	t.Helper()
	repo := &mockAccountRepo{}
	hasher := &mockHasher{}
	idGen := &mockIDGenerator{}
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	svc := service.NewAuthService(repo, hasher, idGen, mockClock, newTestLogger())
	return svc, repo, hasher, idGen, mockClock
}

func strPtr(s string) *string {
	return &s
}

func accountNotFound() error {
	return accountrepo.ErrAccountNotFound
}

func emailExists() error {
	return accountrepo.ErrEmailAlreadyExists
}
