package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("invalid file type, only JPG/JPEG/PNG allowed")
)

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// LocalStore saves uploaded images under Dir, served at /uploads.
type LocalStore struct {
	Dir      string
	MaxBytes int64
}

func NewLocalStore(dir string, maxBytes int64) *LocalStore {
	return &LocalStore{Dir: dir, MaxBytes: maxBytes}
}

// SaveImage validates and writes the file as <prefix>-<id>-<nanos><ext> and
// returns the stored name.
func (s *LocalStore) SaveImage(file *multipart.FileHeader, prefix string, id uint) (string, error) {
	if file.Size > s.MaxBytes {
		return "", fmt.Errorf("%w (max %dMB)", ErrFileTooLarge, s.MaxBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExts[ext] {
		return "", ErrInvalidFileType
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("%s-%d-%d%s", prefix, id, time.Now().UnixNano(), ext)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	if err := writeFile(filepath.Join(s.Dir, name), src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return name, nil
}

// writeFile copies src to path and removes whatever was written if the
// copy or the close fails.
func writeFile(path string, src io.Reader) (err error) {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	_, err = io.Copy(dst, src)
	return err
}

// Delete removes a stored file; a missing file is not an error.
func (s *LocalStore) Delete(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
