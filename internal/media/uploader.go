package media

import (
	"context"
	"time"

	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/snapfeed/internal/common/crypto"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
)

const rollbackTimeout = 10 * time.Second

type Uploaded struct {
	Key string
	URL string
}

func URLs(uploaded []Uploaded) []string {
	urls := make([]string, len(uploaded))
	for i, u := range uploaded {
		urls[i] = u.URL
	}
	return urls
}

type Uploader struct {
	store       Store
	clock       clock.Clock
	idGenerator commoncrypto.IDGenerator
	log         *logger.Logger
}

func NewUploader(store Store, clock clock.Clock, idGenerator commoncrypto.IDGenerator, log *logger.Logger) *Uploader {
	return &Uploader{
		store:       store,
		clock:       clock,
		idGenerator: idGenerator,
		log:         log,
	}
}

// UploadAll validates every file before storing the first one, then stores
// them one at a time in order. If any upload fails the objects already
// stored by this call are deleted and ErrUploadFailed is returned.
func (u *Uploader) UploadAll(ctx context.Context, kind Kind, files []File) ([]Uploaded, error) {
	for i := range files {
		if err := Validate(&files[i]); err != nil {
			return nil, err
		}
	}

	uploaded := make([]Uploaded, 0, len(files))
	for _, f := range files {
		item, err := u.put(ctx, kind, f)
		if err != nil {
			u.log.WithFields(ctx, logger.Fields{
				"backend":  u.store.Backend(),
				"uploaded": len(uploaded),
				"action":   "media_upload_failed",
			}).Errorf("upload failed: %v", err)
			u.Rollback(ctx, uploaded)
			return nil, ErrUploadFailed.WithCause(err)
		}
		uploaded = append(uploaded, item)
	}
	return uploaded, nil
}

// Rollback deletes objects stored earlier in a request that did not
// complete. Failures are logged and counted, never returned.
func (u *Uploader) Rollback(ctx context.Context, uploaded []Uploaded) {
	if len(uploaded) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	for _, item := range uploaded {
		if err := u.store.Delete(ctx, item.Key); err != nil {
			metrics.MediaRollbacksTotal.WithLabelValues("error").Inc()
			u.log.WithFields(ctx, logger.Fields{
				"key":    item.Key,
				"action": "media_rollback_failed",
			}).Warnf("failed to delete orphaned object: %v", err)
			continue
		}
		metrics.MediaRollbacksTotal.WithLabelValues("success").Inc()
	}
}

func (u *Uploader) put(ctx context.Context, kind Kind, f File) (Uploaded, error) {
	id, err := u.idGenerator.NewID()
	if err != nil {
		return Uploaded{}, err
	}
	key := ObjectKey(kind, u.clock.Now(), id, f.Name, f.ContentType)
	backend := u.store.Backend()

	start := time.Now()
	url, err := u.store.Put(ctx, Object{
		Key:         key,
		ContentType: f.ContentType,
		Size:        f.Size,
		Body:        f.Content,
	})
	metrics.MediaUploadDurationSeconds.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(backend, "error").Inc()
		return Uploaded{}, err
	}

	metrics.MediaUploadsTotal.WithLabelValues(backend, "success").Inc()
	metrics.MediaUploadBytes.WithLabelValues(backend).Observe(float64(f.Size))
	return Uploaded{Key: key, URL: url}, nil
}
