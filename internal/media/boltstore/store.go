package boltstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	"github.com/AlibekovAA/snapfeed/internal/media"
)

const backendName = "bolt"

var (
	bucketObjects      = []byte("objects")
	bucketContentTypes = []byte("content_types")
)

var (
	ErrNotFound       = errors.New("media object not found")
	ErrObjectTooLarge = errors.New("media object too large")
)

type Blob struct {
	ContentType string
	Data        []byte
}

// Store keeps blobs in a local bbolt file and serves them over HTTP under
// /media/.
type Store struct {
	db            *bbolt.DB
	publicBaseURL string
}

func New(path, publicBaseURL string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Store{db: db, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketObjects, bucketContentTypes} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) Backend() string {
	return backendName
}

func (s *Store) Put(ctx context.Context, obj media.Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(obj.Body, constants.MaxImageSizeBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read object: %w", err)
	}
	if len(data) > constants.MaxImageSizeBytes {
		return "", ErrObjectTooLarge
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketObjects).Put([]byte(obj.Key), data); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
		if err := tx.Bucket(bucketContentTypes).Put([]byte(obj.Key), []byte(obj.ContentType)); err != nil {
			return fmt.Errorf("failed to save content type: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return s.URL(obj.Key), nil
}

func (s *Store) Get(ctx context.Context, key string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}

	var blob Blob
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketObjects).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		// bbolt values are only valid for the life of the transaction.
		blob.Data = append([]byte(nil), data...)
		blob.ContentType = string(tx.Bucket(bucketContentTypes).Get([]byte(key)))
		return nil
	})
	if err != nil {
		return Blob{}, err
	}
	return blob, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketObjects).Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete object: %w", err)
		}
		return tx.Bucket(bucketContentTypes).Delete([]byte(key))
	})
}

func (s *Store) URL(key string) string {
	return s.publicBaseURL + "/media/" + key
}
