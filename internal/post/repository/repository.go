package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/snapfeed/internal/common/db"
	"github.com/AlibekovAA/snapfeed/internal/post/domain"
)

type Repository interface {
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
	ListFeed(ctx context.Context) ([]domain.FeedItem, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Create inserts post and returns it with the stored timestamps. An empty
// image list is stored as NULL.
func (r *PgRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	start := time.Now()

	var images []string
	if len(post.Images) > 0 {
		images = post.Images
	}

	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO posts (id, user_id, content, images)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		string(post.ID),
		post.UserID,
		post.Content,
		images,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err := db.HandleExecError(err, "create post", start); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// ListFeed returns every post newest first with its author joined in.
func (r *PgRepository) ListFeed(ctx context.Context) ([]domain.FeedItem, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT p.id, p.user_id, p.content, COALESCE(p.images, '{}'), p.created_at, p.updated_at,
		        u.username, u.name, COALESCE(u.avatar_url, '')
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY p.created_at DESC, p.id DESC`,
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list feed", start)
	}
	defer rows.Close()

	items := make([]domain.FeedItem, 0)
	for rows.Next() {
		var (
			item domain.FeedItem
			id   string
		)
		if err := rows.Scan(
			&id,
			&item.UserID,
			&item.Content,
			&item.Images,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Author.Username,
			&item.Author.Name,
			&item.Author.AvatarURL,
		); err != nil {
			return nil, db.HandleExecError(err, "scan feed", start)
		}
		item.ID = domain.ID(id)
		item.Author.ID = item.UserID
		items = append(items, item)
	}

	if err := db.HandleExecError(rows.Err(), "list feed", start); err != nil {
		return nil, err
	}
	return items, nil
}
