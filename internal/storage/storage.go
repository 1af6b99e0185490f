package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrUploadFailed = errors.New("upload failed")

// BlobStore uploads raw bytes and returns a URL the frontend can fetch.
type BlobStore interface {
	Upload(name string, data []byte) (string, error)
}

// DiskStore writes blobs under a local directory that the app serves
// statically at /uploads.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (d *DiskStore) Upload(name string, data []byte) (string, error) {
	name = filepath.Base(name) // no path traversal via client filenames
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: empty file name", ErrUploadFailed)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return "/uploads/" + name, nil
}
