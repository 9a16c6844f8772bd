package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const imagesDir = "images"

// hashChunkSize bounds memory while hashing arbitrarily large images.
const hashChunkSize = 1 << 20

// Storage defines the interface for content-addressed image storage.
type Storage interface {
	// SaveDedup hashes the source file and copies it into the store under
	// its canonical content-addressed name. The copy is idempotent: if the
	// destination already exists it is left untouched. Returns the path
	// relative to the storage root and the hex digest.
	SaveDedup(src string) (relPath string, digest string, err error)

	// Delete removes a stored file by its root-relative path.
	Delete(relPath string) error

	// Resolve turns a root-relative path into an absolute one.
	Resolve(relPath string) string
}

// LocalStorage implements Storage on the local filesystem.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(root, imagesDir), 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// HashFile computes the hex-encoded SHA-256 digest of a file, streaming it
// in fixed-size chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hashing file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (l *LocalStorage) SaveDedup(src string) (string, string, error) {
	digest, err := HashFile(src)
	if err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".jpg"
	}

	rel := filepath.Join(imagesDir, digest+ext)
	dst := filepath.Join(l.root, rel)
	if _, err := os.Stat(dst); err == nil {
		return rel, digest, nil
	}

	if err := copyFile(src, dst); err != nil {
		return "", "", err
	}
	return rel, digest, nil
}

func (l *LocalStorage) Delete(relPath string) error {
	if err := os.Remove(filepath.Join(l.root, relPath)); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

func (l *LocalStorage) Resolve(relPath string) string {
	return filepath.Join(l.root, relPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying file: %w", err)
	}
	return out.Close()
}
