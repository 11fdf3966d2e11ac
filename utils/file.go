package utils

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/unidecode"
)

// LocalStore saves uploads under Dir and serves them from URLPrefix. Used when
// R2 is not configured.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir, URLPrefix: "/uploads"}, nil
}

func (l *LocalStore) Upload(_ context.Context, fileHeader *multipart.FileHeader, key string) (string, error) {
	if err := SaveFile(fileHeader, filepath.Join(l.Dir, filepath.FromSlash(key))); err != nil {
		return "", err
	}
	return l.URLPrefix + "/" + key, nil
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	// ✅ Ensure the directory for the destination file exists
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}

// ObjectKey builds "prefix/<uuid>-<ascii name><ext>" from an uploaded file
// name. Non-ASCII names are transliterated.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".png"
	}
	base := unidecode.Unidecode(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))

	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if len(name) > 40 {
		name = name[:40]
	}

	key := uuid.NewString()
	if name != "" {
		key += "-" + name
	}
	return path.Join(prefix, key+ext)
}
