package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/snapfeed/internal/account/domain"
	"github.com/AlibekovAA/snapfeed/internal/common/db"
)

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

type Repository interface {
	Create(ctx context.Context, account domain.Account) error
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	FindByUsername(ctx context.Context, username string) (domain.Account, error)
	FindByID(ctx context.Context, id domain.ID) (domain.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id domain.ID, update domain.ProfileUpdate) (domain.Account, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const selectColumns = `id, email, username, password_hash, name, bio, avatar_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a  domain.Account
		id string
	)
	err := row.Scan(&id, &a.Email, &a.Username, &a.PasswordHash, &a.Name, &a.Bio, &a.AvatarURL, &a.CreatedAt, &a.UpdatedAt)
	a.ID = domain.ID(id)
	return a, err
}

func (r *PgRepository) Create(ctx context.Context, account domain.Account) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, email, username, password_hash, name, bio, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(account.ID),
		account.Email,
		account.Username,
		account.PasswordHash,
		account.Name,
		account.Bio,
		account.AvatarURL,
	)
	if constraint, ok := db.UniqueViolation(err); ok {
		db.MeasureQueryDuration("create account", start)
		if constraint == usernameConstraint {
			return ErrUsernameAlreadyExists
		}
		return ErrEmailAlreadyExists
	}
	return db.HandleExecError(err, "create account", start)
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE email = $1`, email)
	account, err := scanAccount(row)
	if err := db.HandleQueryError(err, ErrAccountNotFound, "find user by email", start); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.Account, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE username = $1`, username)
	account, err := scanAccount(row)
	if err := db.HandleQueryError(err, ErrAccountNotFound, "find user by username", start); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE id = $1`, string(id))
	account, err := scanAccount(row)
	if err := db.HandleQueryError(err, ErrAccountNotFound, "find user by id", start); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *PgRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	start := time.Now()
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err := db.HandleQueryError(err, ErrAccountNotFound, "check username exists", start); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateProfile applies the non-nil fields of update and returns the row as
// stored afterwards.
func (r *PgRepository) UpdateProfile(ctx context.Context, id domain.ID, update domain.ProfileUpdate) (domain.Account, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE users SET
			name = COALESCE($2, name),
			bio = CASE WHEN $3 THEN $4 ELSE bio END,
			avatar_url = COALESCE($5, avatar_url),
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+selectColumns,
		string(id),
		update.Name,
		update.Bio != nil,
		update.Bio,
		update.AvatarURL,
	)
	account, err := scanAccount(row)
	if err := db.HandleQueryError(err, ErrAccountNotFound, "update profile", start); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}
