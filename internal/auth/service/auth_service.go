package service

import (
	"context"
	"errors"
	"sync"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	authdomain "github.com/AlibekovAA/snapfeed/internal/auth/domain"
	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/snapfeed/internal/common/crypto"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

const dummyPassword = "snapfeed-timing-equalizer"

type AuthService struct {
	repo        accountrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo accountrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	clock clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		clock:       clock,
		log:         log,
	}
}

type SignupInput struct {
	Email    string
	Username string
	Password string
	Name     string
}

// Signup creates a local account. Email uniqueness is checked before
// username uniqueness; a constraint violation from a concurrent insert maps
// to the same conflict errors.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (authdomain.Identity, error) {
	input = normalizeSignup(input)

	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "signup_attempt",
	}).Info("signup attempt")

	if err := validateSignup(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signup_validation_failed",
		}).Warnf("signup validation failed: %v", err)
		recordSignup("invalid")
		return authdomain.Identity{}, err
	}

	if err := s.ensureAvailable(ctx, input.Email, input.Username); err != nil {
		return authdomain.Identity{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signup_hash_failed",
		}).Errorf("signup failed: password hash error: %v", err)
		recordSignup("error")
		return authdomain.Identity{}, newInternalError("HASH_FAILED", "failed to create account", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signup_id_generation_failed",
		}).Errorf("signup failed: id generation error: %v", err)
		recordSignup("error")
		return authdomain.Identity{}, newInternalError("ID_GENERATION_FAILED", "failed to create account", err)
	}

	now := s.clock.Now()
	account := accountdomain.Account{
		ID:           accountdomain.ID(id),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: &hash,
		Name:         input.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if mapped, ok := mapConflict(err); ok {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "signup_conflict_on_insert",
			}).Warnf("signup failed: %v", err)
			recordSignup("conflict")
			return authdomain.Identity{}, mapped
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signup_create_failed",
		}).Errorf("signup failed: %v", err)
		recordSignup("error")
		return authdomain.Identity{}, newInternalError("DB_ERROR", "failed to create account", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": account.Username,
		"user_id":  string(account.ID),
		"action":   "signup_success",
	}).Info("signup success")
	recordSignup("success")

	return authdomain.IdentityFromAccount(account), nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "signup_email_exists",
		}).Warn("signup failed: email already exists")
		recordSignup("conflict")
		return ErrEmailTaken
	} else if !errors.Is(err, accountrepo.ErrAccountNotFound) {
		recordSignup("error")
		return newInternalError("DB_ERROR", "failed to create account", err)
	}

	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		recordSignup("error")
		return newInternalError("DB_ERROR", "failed to create account", err)
	}
	if exists {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "signup_username_exists",
		}).Warn("signup failed: username already exists")
		recordSignup("conflict")
		return ErrUsernameTaken
	}
	return nil
}

// Authenticate verifies an email/password pair. Unknown emails and accounts
// without a local password fail exactly like a wrong password, including the
// cost of one hash comparison.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (authdomain.Identity, error) {
	s.log.WithFields(ctx, logger.Fields{
		"action": "signin_attempt",
	}).Info("signin attempt")

	if email == "" || password == "" {
		recordSignin("credentials", "invalid")
		return authdomain.Identity{}, ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, accountrepo.ErrAccountNotFound) {
		s.log.WithFields(ctx, logger.Fields{
			"action": "signin_lookup_failed",
		}).Errorf("signin failed: %v", err)
		recordSignin("credentials", "error")
		return authdomain.Identity{}, newInternalError("DB_ERROR", "failed to sign in", err)
	}

	if err != nil || !account.HasPassword() {
		_ = s.hasher.Compare(s.timingHash(), password)
		s.log.WithFields(ctx, logger.Fields{
			"action": "signin_invalid_credentials",
		}).Warn("signin failed: invalid credentials")
		recordSignin("credentials", "invalid")
		return authdomain.Identity{}, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(*account.PasswordHash, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(account.ID),
			"action":  "signin_invalid_credentials",
		}).Warn("signin failed: invalid credentials")
		recordSignin("credentials", "invalid")
		return authdomain.Identity{}, ErrInvalidCredentials
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(account.ID),
		"action":  "signin_success",
	}).Info("signin success")
	recordSignin("credentials", "success")

	return authdomain.IdentityFromAccount(account), nil
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Errorf("failed to prepare timing hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func mapConflict(err error) (error, bool) {
	switch {
	case errors.Is(err, accountrepo.ErrEmailAlreadyExists):
		return ErrEmailTaken, true
	case errors.Is(err, accountrepo.ErrUsernameAlreadyExists):
		return ErrUsernameTaken, true
	default:
		return nil, false
	}
}
