package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutObject struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		b, _ := io.ReadAll(params.Body)
		f.body = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	fake := &fakePutObject{}
	store := newS3Storage(fake, "shop-bucket", "ap-northeast-2", "https://cdn.test/")

	url, err := store.Upload(context.Background(), "avatar/a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.test/avatar/a.png", url)
	assert.Equal(t, "shop-bucket", *fake.input.Bucket)
	assert.Equal(t, "avatar/a.png", *fake.input.Key)
	assert.Equal(t, "image/png", *fake.input.ContentType)
	assert.Equal(t, "png-bytes", fake.body)
}

func TestUpload_Error(t *testing.T) {
	cause := errors.New("access denied")
	store := newS3Storage(&fakePutObject{err: cause}, "b", "r", "")

	url, err := store.Upload(context.Background(), "k", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, url)
}

func TestPublicURL_NoCDN(t *testing.T) {
	store := newS3Storage(&fakePutObject{}, "shop-bucket", "us-east-1", "")
	assert.Equal(t, "https://shop-bucket.s3.us-east-1.amazonaws.com/avatar/x.jpg", store.PublicURL("avatar/x.jpg"))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("avatar", "Me.JPG")
	assert.True(t, strings.HasPrefix(key, "avatar/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.Len(t, key, len("avatar/")+36+len(".jpg"))

	assert.NotEqual(t, key, ObjectKey("avatar", "Me.JPG"))
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantTypeErr bool
		wantSizeErr bool
	}{
		{"png ok", "image/png", 1024, false, false},
		{"pdf rejected", "application/pdf", 1024, true, false},
		{"too big", "image/jpeg", MaxAvatarSize + 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTypeErr, ValidateContentType(tt.contentType, AllowedImageTypes) != nil)
			assert.Equal(t, tt.wantSizeErr, ValidateFileSize(tt.size, MaxAvatarSize) != nil)
		})
	}
}
