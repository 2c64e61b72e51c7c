package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const defaultUploadTimeout = 30 * time.Second

var (
	errInvalidBucket      = errors.New("storage: bucket name is required")
	errInvalidObject      = errors.New("storage: object name is required")
	errContentTypeMissing = errors.New("storage: content type is required")
	errContentTypeDenied  = errors.New("storage: content type not allowed")
)

// Uploader writes objects into a Cloud Storage bucket and returns their
// public download URLs. Used for product image uploads from the admin API.
type Uploader struct {
	client  *storage.Client
	bucket  string
	timeout time.Duration

	allowedContentTypes []string
}

// UploaderOption customises Uploader behaviour.
type UploaderOption func(*Uploader)

// WithUploadTimeout bounds each upload operation.
func WithUploadTimeout(d time.Duration) UploaderOption {
	return func(u *Uploader) {
		if d > 0 {
			u.timeout = d
		}
	}
}

// WithAllowedContentTypes restricts accepted content types. Entries may use a
// trailing wildcard such as "image/*".
func WithAllowedContentTypes(types ...string) UploaderOption {
	return func(u *Uploader) {
		u.allowedContentTypes = append([]string(nil), types...)
	}
}

// NewUploader constructs an Uploader bound to the given bucket.
func NewUploader(ctx context.Context, bucket string, opts ...UploaderOption) (*Uploader, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errInvalidBucket
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	return newUploader(client, bucket, opts...), nil
}

// NewUploaderWithOptions constructs an Uploader with explicit client options
// (emulator endpoints, test credentials).
func NewUploaderWithOptions(ctx context.Context, bucket string, clientOpts []option.ClientOption, opts ...UploaderOption) (*Uploader, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errInvalidBucket
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	return newUploader(client, bucket, opts...), nil
}

func newUploader(client *storage.Client, bucket string, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		client:  client,
		bucket:  strings.TrimSpace(bucket),
		timeout: defaultUploadTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u
}

// Upload streams the reader into the bucket under the given object key and
// returns the object's public URL.
func (u *Uploader) Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error) {
	if u == nil || u.client == nil {
		return "", errors.New("storage: uploader not initialised")
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return "", errInvalidObject
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return "", errContentTypeMissing
	}
	if len(u.allowedContentTypes) > 0 && !contentTypeAllowed(contentType, u.allowedContentTypes) {
		return "", errContentTypeDenied
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	writer := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("storage: write object %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("storage: finalise object %s: %w", object, err)
	}

	return u.PublicURL(object), nil
}

// Delete removes the object from the bucket. Missing objects are not an error.
func (u *Uploader) Delete(ctx context.Context, object string) error {
	if u == nil || u.client == nil {
		return errors.New("storage: uploader not initialised")
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return errInvalidObject
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	err := u.client.Bucket(u.bucket).Object(object).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: delete object %s: %w", object, err)
	}
	return nil
}

// PublicURL returns the canonical public URL for an object in the bucket.
func (u *Uploader) PublicURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, url.PathEscape(object))
}

// Close releases the underlying client.
func (u *Uploader) Close() error {
	if u == nil || u.client == nil {
		return nil
	}
	return u.client.Close()
}

func contentTypeAllowed(contentType string, allowed []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == "" {
			continue
		}
		if candidate == "*" {
			return true
		}
		if strings.HasSuffix(candidate, "/*") {
			if strings.HasPrefix(normalized, strings.TrimSuffix(candidate, "*")) {
				return true
			}
			continue
		}
		if normalized == candidate {
			return true
		}
	}
	return false
}
