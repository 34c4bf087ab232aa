package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSObjectStore writes to a Firebase Storage bucket and hands out
// token-bearing download URLs, matching what the Firebase client SDK produces.
type GCSObjectStore struct {
	client *storage.Client
	bucket string
}

func NewGCSObjectStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSObjectStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCSObjectStore{client: client, bucket: bucket}, nil
}

func (s *GCSObjectStore) Bucket() string {
	return s.bucket
}

func (s *GCSObjectStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	token := uuid.New().String()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return firebaseDownloadURL(s.bucket, key, token), nil
}

// Move copies with a fresh download token, so URLs issued for from stop working.
func (s *GCSObjectStore) Move(ctx context.Context, from, to string) (string, error) {
	bucket := s.client.Bucket(s.bucket)
	src := bucket.Object(from)

	attrs, err := src.Attrs(ctx)
	if err != nil {
		return "", fmt.Errorf("move %s: %w", from, err)
	}

	token := uuid.New().String()
	copier := bucket.Object(to).CopierFrom(src)
	copier.ContentType = attrs.ContentType
	copier.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := copier.Run(ctx); err != nil {
		return "", fmt.Errorf("move %s: %w", from, err)
	}

	if err := s.Delete(ctx, from); err != nil {
		return "", fmt.Errorf("move %s: %w", from, err)
	}
	return firebaseDownloadURL(s.bucket, to, token), nil
}

func (s *GCSObjectStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *GCSObjectStore) Close() error {
	return s.client.Close()
}

func firebaseDownloadURL(bucket, objectName, token string) string {
	return fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket,
		url.PathEscape(objectName),
		url.QueryEscape(token),
	)
}
