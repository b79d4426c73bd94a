package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/rakawidhi/canteen-app/models"
)

// Uploader stores an uploaded image blob and returns the URL to serve
// it from. The catalog only ever sees the returned URL.
type Uploader interface {
	Store(filename string, r io.Reader) (string, error)
}

// DiskUploader writes uploads under Dir with uuid names and serves them
// from BaseURL.
type DiskUploader struct {
	Dir     string
	BaseURL string
}

func NewDiskUploader(dir string) *DiskUploader {
	return &DiskUploader{Dir: dir, BaseURL: "/uploads"}
}

func (u *DiskUploader) Store(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fmt.Errorf("only image files are allowed: %w", models.ErrInvalidRequest)
	}

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(u.Dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return u.BaseURL + "/" + name, nil
}
