package s3store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/snapfeed/internal/common/config"
	"github.com/AlibekovAA/snapfeed/internal/media"
)

type fakeAPI struct {
	put     *s3.PutObjectInput
	body    string
	deleted *s3.DeleteObjectInput
	err     error
}

func (f *fakeAPI) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = params
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = params
	return &s3.DeleteObjectOutput{}, nil
}

func TestStore_Put(t *testing.T) {
	api := &fakeAPI{}
	store := NewWithClient(api, "snapfeed-media", "eu-west-1", "")

	url, err := store.Put(context.Background(), media.Object{
		Key:         "posts/1-abc-photo.png",
		ContentType: "image/png",
		Size:        5,
		Body:        strings.NewReader("bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://snapfeed-media.s3.eu-west-1.amazonaws.com/posts/1-abc-photo.png", url)
	require.NotNil(t, api.put)
	assert.Equal(t, "snapfeed-media", aws.ToString(api.put.Bucket))
	assert.Equal(t, "posts/1-abc-photo.png", aws.ToString(api.put.Key))
	assert.Equal(t, "image/png", aws.ToString(api.put.ContentType))
	assert.Equal(t, int64(5), aws.ToInt64(api.put.ContentLength))
	assert.Equal(t, "bytes", api.body)
	assert.Equal(t, "s3", store.Backend())
}

func TestStore_PutError(t *testing.T) {
	store := NewWithClient(&fakeAPI{err: errors.New("access denied")}, "b", "us-east-1", "")

	_, err := store.Put(context.Background(), media.Object{Key: "k", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestStore_Delete(t *testing.T) {
	api := &fakeAPI{}
	store := NewWithClient(api, "b", "us-east-1", "")

	require.NoError(t, store.Delete(context.Background(), "avatars/1-x.png"))
	require.NotNil(t, api.deleted)
	assert.Equal(t, "avatars/1-x.png", aws.ToString(api.deleted.Key))
}

func TestStore_URL(t *testing.T) {
	store := NewWithClient(&fakeAPI{}, "b", "us-east-1", "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/posts/a%20b.png", store.URL("posts/a b.png"))
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBase(config.StorageConfig{PublicBaseURL: "https://cdn.example.com"}))
	assert.Equal(t, "http://localhost:9000/media", publicBase(config.StorageConfig{Endpoint: "http://localhost:9000/", Bucket: "media"}))
	assert.Equal(t, "", publicBase(config.StorageConfig{Bucket: "media"}))
}
