package storage

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(filepath.Join(dir, "uploads"), 1<<20)

	name, err := s.SaveImage(fileHeader(t, "Logo.PNG", []byte("png-bytes")), "hotel", 4)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "hotel-4-"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(name))
	_, err = os.Stat(filepath.Join(dir, "uploads", name))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(name))
	assert.NoError(t, s.Delete(""))
}

func TestSaveImage_Rejects(t *testing.T) {
	s := NewLocalStore(t.TempDir(), 4)

	_, err := s.SaveImage(fileHeader(t, "menu.pdf", []byte("x")), "dish", 1)
	assert.ErrorIs(t, err, ErrInvalidFileType)

	_, err = s.SaveImage(fileHeader(t, "big.jpg", []byte("too-large")), "dish", 1)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestWriteFile_RemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dish-1.png")
	readErr := errors.New("connection reset")
	src := io.MultiReader(strings.NewReader("partial-bytes"), iotest.ErrReader(readErr))

	err := writeFile(path, src)
	require.ErrorIs(t, err, readErr)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "partial upload left on disk")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dish-2.png")
	require.NoError(t, writeFile(path, strings.NewReader("png-bytes")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}
