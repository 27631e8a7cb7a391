package service

import (
	"context"
	"strings"

	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/snapfeed/internal/common/crypto"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/media"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
	"github.com/AlibekovAA/snapfeed/internal/post/domain"
	"github.com/AlibekovAA/snapfeed/internal/post/repository"
)

// Publisher receives every post after it is stored.
type Publisher interface {
	Publish(item domain.FeedItem)
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.FeedItem) {}

type PostService struct {
	repo        repository.Repository
	uploader    *media.Uploader
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	publisher   Publisher
	log         *logger.Logger
}

func NewPostService(
	repo repository.Repository,
	uploader *media.Uploader,
	idGenerator commoncrypto.IDGenerator,
	clock clock.Clock,
	publisher Publisher,
	log *logger.Logger,
) *PostService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &PostService{
		repo:        repo,
		uploader:    uploader,
		idGenerator: idGenerator,
		clock:       clock,
		publisher:   publisher,
		log:         log,
	}
}

type CreatePostInput struct {
	Author  domain.Author
	Content string
	Images  []media.File
}

// CreatePost stores a post with up to four images. Images are uploaded in
// submission order only after all of them pass validation; if the insert
// fails the uploaded objects are removed again.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (domain.Post, error) {
	fields := logger.Fields{
		"user_id": input.Author.ID,
		"images":  len(input.Images),
		"action":  "create_post_attempt",
	}
	s.log.WithFields(ctx, fields).Info("create post attempt")

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return domain.Post{}, ErrContentRequired
	}
	if len(input.Images) > constants.MaxImagesPerPost {
		return domain.Post{}, ErrTooManyImages
	}

	uploaded, err := s.uploader.UploadAll(ctx, media.KindPostImage, input.Images)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": input.Author.ID,
			"action":  "create_post_upload_failed",
		}).Warnf("create post failed: %v", err)
		return domain.Post{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.uploader.Rollback(ctx, uploaded)
		return domain.Post{}, ErrCreatePostFailed.WithCause(err)
	}

	now := s.clock.Now()
	post, err := s.repo.Create(ctx, domain.Post{
		ID:        domain.ID(id),
		UserID:    input.Author.ID,
		Content:   content,
		Images:    media.URLs(uploaded),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": input.Author.ID,
			"action":  "create_post_insert_failed",
		}).Errorf("create post failed: %v", err)
		s.uploader.Rollback(ctx, uploaded)
		return domain.Post{}, ErrCreatePostFailed.WithCause(err)
	}

	metrics.PostsCreated.Inc()
	metrics.PostImagesAttached.Observe(float64(len(uploaded)))
	s.log.WithFields(ctx, logger.Fields{
		"user_id": input.Author.ID,
		"post_id": string(post.ID),
		"action":  "create_post_success",
	}).Info("post created")

	s.publisher.Publish(domain.FeedItem{Post: post, Author: input.Author})
	return post, nil
}

// ListFeed returns all posts, newest first.
func (s *PostService) ListFeed(ctx context.Context) ([]domain.FeedItem, error) {
	items, err := s.repo.ListFeed(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_feed_failed",
		}).Errorf("list feed failed: %v", err)
		return nil, ErrListFeedFailed.WithCause(err)
	}
	return items, nil
}
