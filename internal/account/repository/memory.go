package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/snapfeed/internal/account/domain"
)

// MemoryRepository mirrors the Postgres uniqueness rules in process. It backs
// service and handler tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[domain.ID]domain.Account
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[domain.ID]domain.Account),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Create(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return ErrEmailAlreadyExists
		}
		if existing.Username == account.Username {
			return ErrUsernameAlreadyExists
		}
	}

	now := r.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = account
	return nil
}

func (r *MemoryRepository) find(match func(domain.Account) bool) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if match(a) {
			return a, nil
		}
	}
	return domain.Account{}, ErrAccountNotFound
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Email == email })
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Username == username })
}

func (r *MemoryRepository) FindByID(_ context.Context, id domain.ID) (domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.ID == id })
}

func (r *MemoryRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err == ErrAccountNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, id domain.ID, update domain.ProfileUpdate) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, ErrAccountNotFound
	}
	if update.Name != nil {
		name := *update.Name
		a.Name = name
	}
	if update.Bio != nil {
		bio := *update.Bio
		a.Bio = &bio
	}
	if update.AvatarURL != nil {
		avatar := *update.AvatarURL
		a.AvatarURL = &avatar
	}
	a.UpdatedAt = r.now()
	r.accounts[id] = a
	return a, nil
}
