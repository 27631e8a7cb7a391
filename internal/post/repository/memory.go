package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	"github.com/AlibekovAA/snapfeed/internal/post/domain"
)

var ErrUnknownAuthor = errors.New("post author does not exist")

// MemoryRepository keeps posts in process and joins authors from an account
// repository, mirroring the foreign key of the posts table.
type MemoryRepository struct {
	mu       sync.RWMutex
	posts    []domain.Post
	accounts accountrepo.Repository
	now      func() time.Time
}

func NewMemoryRepository(accounts accountrepo.Repository) *MemoryRepository {
	return &MemoryRepository{
		accounts: accounts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	if _, err := r.accounts.FindByID(ctx, accountdomain.ID(post.UserID)); err != nil {
		return domain.Post{}, ErrUnknownAuthor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if len(post.Images) == 0 {
		post.Images = nil
	} else {
		post.Images = append([]string(nil), post.Images...)
	}
	r.posts = append(r.posts, post)
	return post, nil
}

func (r *MemoryRepository) ListFeed(ctx context.Context) ([]domain.FeedItem, error) {
	r.mu.RLock()
	posts := make([]domain.Post, len(r.posts))
	copy(posts, r.posts)
	r.mu.RUnlock()

	// Newest first; later inserts win ties on equal timestamps.
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	items := make([]domain.FeedItem, 0, len(posts))
	for _, p := range posts {
		account, err := r.accounts.FindByID(ctx, accountdomain.ID(p.UserID))
		if err != nil {
			return nil, err
		}
		author := domain.Author{ID: p.UserID, Username: account.Username, Name: account.Name}
		if account.AvatarURL != nil {
			author.AvatarURL = *account.AvatarURL
		}
		if p.Images == nil {
			p.Images = []string{}
		}
		items = append(items, domain.FeedItem{Post: p, Author: author})
	}
	return items, nil
}
