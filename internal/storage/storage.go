// Package storage contains object storage abstractions for S3-compatible backends.
// Implementations must avoid using local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Get and Stat when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info without downloading the content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

const (
	mediaPrefix       = "media/"
	certificatePrefix = "certificates/"
)

// MediaKey is the object key of an uploaded media file.
func MediaKey(id, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return fmt.Sprintf("%s%s-%s", mediaPrefix, id, name)
}

// IsMediaKey reports whether key names an uploaded media file.
func IsMediaKey(key string) bool {
	return strings.HasPrefix(key, mediaPrefix) && !strings.Contains(key, "..")
}

// CertificateKey is the object key of a course completion certificate.
func CertificateKey(courseID, userID string) string {
	return fmt.Sprintf("%s%s/%s.pdf", certificatePrefix, courseID, userID)
}
