package storage

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
)

func TestNewMinIORejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		msg  string
	}{
		{"no endpoint", config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, "endpoint"},
		{"no credentials", config.MinIOConfig{Endpoint: "s3.local:9000", Bucket: "b"}, "credentials"},
		{"no bucket", config.MinIOConfig{Endpoint: "s3.local:9000", AccessKey: "a", SecretKey: "s"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(tt.cfg)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestMinIOPresignGet(t *testing.T) {
	// A fixed region keeps presigning offline.
	cli, err := minio.New("s3.gra.io.cloud.ovh.net", &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: true,
		Region: "gra",
	})
	require.NoError(t, err)
	ctx := context.Background()

	public := &minioStorage{client: cli, bucket: "zerofiltre", publicURL: "https://cdn.zerofiltre.tech"}
	u, err := public.PresignGet(ctx, MediaKey("m1", "cover.png"), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.zerofiltre.tech/media/m1-cover.png", u)

	u, err = public.PresignGet(ctx, CertificateKey("c1", "u1"), time.Hour)
	require.NoError(t, err)
	assert.Contains(t, u, "/zerofiltre/certificates/c1/u1.pdf")
	assert.Contains(t, u, "X-Amz-Signature=")

	private := &minioStorage{client: cli, bucket: "zerofiltre"}
	u, err = private.PresignGet(ctx, MediaKey("m1", "cover.png"), time.Hour)
	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Expires=3600")
}
