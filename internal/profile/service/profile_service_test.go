package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/snapfeed/internal/common/crypto"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/media"
	"github.com/AlibekovAA/snapfeed/internal/profile/service"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fakeStore struct {
	putErr  error
	keys    []string
	deleted []string
}

func (s *fakeStore) Backend() string { return "fake" }

func (s *fakeStore) Put(_ context.Context, obj media.Object) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.keys = append(s.keys, obj.Key)
	return "https://cdn.example.com/" + obj.Key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

type failingUpdateRepo struct {
	*accountrepo.MemoryRepository
}

func (failingUpdateRepo) UpdateProfile(context.Context, accountdomain.ID, accountdomain.ProfileUpdate) (accountdomain.Account, error) {
	return accountdomain.Account{}, errors.New("update failed")
}

func strPtr(s string) *string { return &s }

func setup(t *testing.T, wrap func(*accountrepo.MemoryRepository) accountrepo.Repository) (*service.ProfileService, *accountrepo.MemoryRepository, *fakeStore) {
	t.Helper()
	repo := accountrepo.NewMemoryRepository()
	bio := "old bio"
	if err := repo.Create(context.Background(), accountdomain.Account{
		ID:       "user-1",
		Email:    "alice@example.com",
		Username: "alice",
		Name:     "Alice",
		Bio:      &bio,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var r accountrepo.Repository = repo
	if wrap != nil {
		r = wrap(repo)
	}

	log := logger.NewWriter(&strings.Builder{}, "test", "ERROR")
	store := &fakeStore{}
	uploader := media.NewUploader(store, clock.NewMockClock(time.Unix(1700000000, 0)), commoncrypto.NewUUIDGenerator(), log)
	return service.NewProfileService(r, uploader, log), repo, store
}

func avatar() *media.File {
	return &media.File{Name: "me.png", ContentType: "image/png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)}
}

func TestGetProfile(t *testing.T) {
	svc, _, _ := setup(t, nil)

	account, err := svc.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if account.Username != "alice" {
		t.Errorf("unexpected account %+v", account)
	}

	if _, err := svc.GetProfile(context.Background(), "ghost"); !errors.Is(err, service.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUpdateProfile_NameAndBio(t *testing.T) {
	svc, _, _ := setup(t, nil)

	account, err := svc.UpdateProfile(context.Background(), "user-1", service.UpdateInput{Name: strPtr(" Alice B "), Bio: strPtr("")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if account.Name != "Alice B" {
		t.Errorf("expected trimmed name, got %q", account.Name)
	}
	if account.Bio == nil || *account.Bio != "" {
		t.Errorf("expected cleared bio, got %v", account.Bio)
	}
	if account.Email != "alice@example.com" || account.Username != "alice" {
		t.Error("email and username must not change")
	}
}

func TestUpdateProfile_Rejections(t *testing.T) {
	svc, _, _ := setup(t, nil)
	ctx := context.Background()

	if _, err := svc.UpdateProfile(ctx, "user-1", service.UpdateInput{}); !errors.Is(err, service.ErrEmptyUpdate) {
		t.Errorf("expected ErrEmptyUpdate, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "user-1", service.UpdateInput{Name: strPtr("   ")}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation for blank name, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "user-1", service.UpdateInput{Name: strPtr(""), Bio: strPtr("hello")}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation for empty name, got %v", err)
	}
	if account, err := svc.GetProfile(ctx, "user-1"); err != nil || account.Name != "Alice" || account.Bio == nil || *account.Bio != "old bio" {
		t.Errorf("expected rejected updates to leave the profile untouched, got %+v, %v", account, err)
	}
	if _, err := svc.UpdateProfile(ctx, "user-1", service.UpdateInput{Bio: strPtr(strings.Repeat("b", 501))}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation for long bio, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "ghost", service.UpdateInput{Name: strPtr("x")}); !errors.Is(err, service.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUpdateProfile_Avatar(t *testing.T) {
	svc, _, store := setup(t, nil)

	account, err := svc.UpdateProfile(context.Background(), "user-1", service.UpdateInput{Avatar: avatar()})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if account.AvatarURL == nil || !strings.Contains(*account.AvatarURL, "/avatars/") {
		t.Fatalf("expected avatar url, got %v", account.AvatarURL)
	}
	if account.Name != "Alice" || account.Bio == nil || *account.Bio != "old bio" {
		t.Error("fields not provided must be left unchanged")
	}
	if len(store.keys) != 1 {
		t.Errorf("expected one upload, got %d", len(store.keys))
	}
}

func TestUpdateProfile_UploadFailureLeavesRowUntouched(t *testing.T) {
	svc, repo, store := setup(t, nil)
	store.putErr = errors.New("bucket unavailable")

	_, err := svc.UpdateProfile(context.Background(), "user-1", service.UpdateInput{Name: strPtr("New"), Avatar: avatar()})
	if !errors.Is(err, media.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}

	account, _ := repo.FindByID(context.Background(), "user-1")
	if account.Name != "Alice" || account.AvatarURL != nil {
		t.Errorf("account must be untouched, got %+v", account)
	}
}

func TestUpdateProfile_InvalidAvatar(t *testing.T) {
	svc, _, store := setup(t, nil)

	bad := &media.File{Name: "a.txt", ContentType: "text/plain", Size: 3, Content: strings.NewReader("abc")}
	_, err := svc.UpdateProfile(context.Background(), "user-1", service.UpdateInput{Avatar: bad})
	if !errors.Is(err, media.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if len(store.keys) != 0 {
		t.Error("nothing may be uploaded")
	}
}

func TestUpdateProfile_RowFailureRollsBackAvatar(t *testing.T) {
	svc, _, store := setup(t, func(r *accountrepo.MemoryRepository) accountrepo.Repository {
		return failingUpdateRepo{r}
	})

	_, err := svc.UpdateProfile(context.Background(), "user-1", service.UpdateInput{Avatar: avatar()})
	if !errors.Is(err, service.ErrUpdateFailed) {
		t.Fatalf("expected ErrUpdateFailed, got %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != store.keys[0] {
		t.Errorf("expected uploaded avatar to be deleted, got %v", store.deleted)
	}
}
