package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	authdomain "github.com/AlibekovAA/snapfeed/internal/auth/domain"
	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

const fallbackUsername = "user"

// FederatedSignIn finds the account owning profile.Email or provisions one
// without a local password. New usernames come from the email local part;
// on collision a numeric suffix is appended starting at 2.
func (s *AuthService) FederatedSignIn(ctx context.Context, profile authdomain.FederatedProfile) (authdomain.Identity, error) {
	email := strings.TrimSpace(profile.Email)
	fields := logger.Fields{
		"provider": profile.Provider,
		"action":   "federated_signin_attempt",
	}
	s.log.WithFields(ctx, fields).Info("federated signin attempt")

	if email == "" {
		recordSignin(profile.Provider, "invalid")
		return authdomain.Identity{}, ErrFederatedEmailMissing
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		recordSignin(profile.Provider, "success")
		return authdomain.IdentityFromAccount(account), nil
	}
	if !errors.Is(err, accountrepo.ErrAccountNotFound) {
		recordSignin(profile.Provider, "error")
		return authdomain.Identity{}, newInternalError("DB_ERROR", "failed to sign in", err)
	}

	account, err = s.provisionFederated(ctx, email, profile)
	if err != nil {
		recordSignin(profile.Provider, "error")
		return authdomain.Identity{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"provider": profile.Provider,
		"user_id":  string(account.ID),
		"username": account.Username,
		"action":   "federated_account_created",
	}).Info("federated account created")
	recordFederatedAccountCreated(profile.Provider)
	recordSignin(profile.Provider, "success")

	return authdomain.IdentityFromAccount(account), nil
}

func (s *AuthService) provisionFederated(ctx context.Context, email string, profile authdomain.FederatedProfile) (accountdomain.Account, error) {
	id, err := s.idGenerator.NewID()
	if err != nil {
		return accountdomain.Account{}, newInternalError("ID_GENERATION_FAILED", "failed to create account", err)
	}

	name := strings.TrimSpace(profile.Name)
	base := UsernameFromEmail(email)
	if name == "" {
		name = base
	}
	if len([]rune(name)) > constants.NameMaxLength {
		name = string([]rune(name)[:constants.NameMaxLength])
	}

	now := s.clock.Now()
	account := accountdomain.Account{
		ID:        accountdomain.ID(id),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if profile.AvatarURL != "" {
		avatar := profile.AvatarURL
		account.AvatarURL = &avatar
	}

	for attempt := 1; attempt <= constants.FederatedUsernameMaxAttempts; attempt++ {
		candidate := usernameCandidate(base, attempt)

		exists, err := s.repo.UsernameExists(ctx, candidate)
		if err != nil {
			return accountdomain.Account{}, newInternalError("DB_ERROR", "failed to create account", err)
		}
		if exists {
			continue
		}

		account.Username = candidate
		err = s.repo.Create(ctx, account)
		switch {
		case err == nil:
			return account, nil
		case errors.Is(err, accountrepo.ErrUsernameAlreadyExists):
			continue
		case errors.Is(err, accountrepo.ErrEmailAlreadyExists):
			existing, findErr := s.repo.FindByEmail(ctx, email)
			if findErr != nil {
				return accountdomain.Account{}, newInternalError("DB_ERROR", "failed to sign in", findErr)
			}
			return existing, nil
		default:
			return accountdomain.Account{}, newInternalError("DB_ERROR", "failed to create account", err)
		}
	}

	s.log.WithFields(ctx, logger.Fields{
		"provider": profile.Provider,
		"base":     base,
		"action":   "federated_username_exhausted",
	}).Warn("no free username candidate")
	return accountdomain.Account{}, ErrUsernameUnavailable
}

// UsernameFromEmail returns the email local part reduced to the characters
// allowed in usernames.
func UsernameFromEmail(email string) string {
	local := email
	if at := strings.LastIndex(email, "@"); at >= 0 {
		local = email[:at]
	}

	var b strings.Builder
	for _, r := range local {
		if r < 128 && usernameRegex.MatchString(string(r)) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = fallbackUsername
	}
	return base
}

func usernameCandidate(base string, attempt int) string {
	suffix := ""
	if attempt > 1 {
		suffix = strconv.Itoa(attempt)
	}
	maxBase := constants.UsernameMaxLength - len(suffix)
	if len(base) > maxBase {
		base = base[:maxBase]
	}
	return base + suffix
}
