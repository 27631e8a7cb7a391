package service

import (
	"context"
	"errors"
	"strings"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/media"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
)

type ProfileService struct {
	repo     accountrepo.Repository
	uploader *media.Uploader
	log      *logger.Logger
}

func NewProfileService(repo accountrepo.Repository, uploader *media.Uploader, log *logger.Logger) *ProfileService {
	return &ProfileService{repo: repo, uploader: uploader, log: log}
}

// UpdateInput carries the optional profile fields. A nil field is left
// unchanged; an empty Bio clears the bio.
type UpdateInput struct {
	Name   *string
	Bio    *string
	Avatar *media.File
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (accountdomain.Account, error) {
	account, err := s.repo.FindByID(ctx, accountdomain.ID(userID))
	if err != nil {
		if errors.Is(err, accountrepo.ErrAccountNotFound) {
			return accountdomain.Account{}, ErrProfileNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "get_profile_failed",
		}).Errorf("get profile failed: %v", err)
		return accountdomain.Account{}, ErrLoadFailed.WithCause(err)
	}
	return account, nil
}

// UpdateProfile applies input to the account. An avatar is validated and
// uploaded before the row is touched; if the row update fails the new
// avatar object is deleted again.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateInput) (accountdomain.Account, error) {
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "update_profile_attempt",
	}).Info("update profile attempt")

	if input.Name == nil && input.Bio == nil && input.Avatar == nil {
		metrics.ProfileUpdates.WithLabelValues("invalid").Inc()
		return accountdomain.Account{}, ErrEmptyUpdate
	}

	update := accountdomain.ProfileUpdate{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		update.Name = &name
	}
	if input.Bio != nil {
		bio := strings.TrimSpace(*input.Bio)
		update.Bio = &bio
	}
	if err := validateUpdate(update.Name, update.Bio); err != nil {
		metrics.ProfileUpdates.WithLabelValues("invalid").Inc()
		return accountdomain.Account{}, err
	}

	var uploaded []media.Uploaded
	if input.Avatar != nil {
		var err error
		uploaded, err = s.uploader.UploadAll(ctx, media.KindAvatar, []media.File{*input.Avatar})
		if err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": userID,
				"action":  "update_profile_avatar_failed",
			}).Warnf("update profile failed: %v", err)
			metrics.ProfileUpdates.WithLabelValues("error").Inc()
			return accountdomain.Account{}, err
		}
		update.AvatarURL = &uploaded[0].URL
	}

	account, err := s.repo.UpdateProfile(ctx, accountdomain.ID(userID), update)
	if err != nil {
		s.uploader.Rollback(ctx, uploaded)
		metrics.ProfileUpdates.WithLabelValues("error").Inc()
		if errors.Is(err, accountrepo.ErrAccountNotFound) {
			return accountdomain.Account{}, ErrProfileNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "update_profile_failed",
		}).Errorf("update profile failed: %v", err)
		return accountdomain.Account{}, ErrUpdateFailed.WithCause(err)
	}

	metrics.ProfileUpdates.WithLabelValues("success").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "update_profile_success",
	}).Info("profile updated")
	return account, nil
}
