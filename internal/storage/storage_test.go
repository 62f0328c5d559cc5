package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"cover.png", "media/id-cover.png"},
		{"../../etc/passwd", "media/id-passwd"},
		{`C:\Users\me\cv.pdf`, "media/id-cv.pdf"},
		{"", "media/id-file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MediaKey("id", tt.filename), tt.filename)
	}
}

func TestCertificateKey(t *testing.T) {
	assert.Equal(t, "certificates/c1/u1.pdf", CertificateKey("c1", "u1"))
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemory("http://files.local")

	info, err := s.Put(ctx, "media/a.txt", strings.NewReader("hello"), PutObjectOptions{Size: 5, ContentType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)

	rc, got, err := s.Get(ctx, "media/a.txt")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "text/plain", got.ContentType)

	u, err := s.PresignGet(ctx, "media/a.txt", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/media/a.txt", u)

	require.NoError(t, s.Delete(ctx, "media/a.txt"))
	_, err = s.Stat(ctx, "media/a.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	_, _, err = s.Get(ctx, "media/a.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
