package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ObjectStore holds uploaded image bytes under slash-separated keys such as
// "gameImages/<id>.png". Put overwrites.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (url string, err error)
	// Move replaces the object at to with the one at from and removes from.
	Move(ctx context.Context, from, to string) (url string, err error)
	// Delete is a no-op for missing objects.
	Delete(ctx context.Context, key string) error
}

// LocalObjectStore writes objects below a directory that the server exposes
// under URLPrefix.
type LocalObjectStore struct {
	dir       string
	urlPrefix string
}

func NewLocalObjectStore(dir, urlPrefix string) (*LocalObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalObjectStore{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

func (s *LocalObjectStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	target, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return s.urlPrefix + path.Clean("/"+key), nil
}

func (s *LocalObjectStore) Move(ctx context.Context, from, to string) (string, error) {
	src, err := s.pathFor(from)
	if err != nil {
		return "", err
	}
	dst, err := s.pathFor(to)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("failed to move file: %w", err)
	}
	return s.urlPrefix + path.Clean("/"+to), nil
}

func (s *LocalObjectStore) Delete(ctx context.Context, key string) error {
	target, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalObjectStore) pathFor(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
