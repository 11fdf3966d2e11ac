package services

import (
	"context"
	"mime/multipart"
	"strings"

	"bodoge-manager/utils"
)

// MaxImageBytes caps match images and avatars.
const MaxImageBytes = 5 * 1024 * 1024

// ImageUploader stores a file under key and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, fh *multipart.FileHeader, key string) (string, error)
}

func checkImage(fh *multipart.FileHeader) error {
	if fh == nil || fh.Size == 0 {
		return invalid("file is required")
	}
	if fh.Size > MaxImageBytes {
		return invalid("file too large (max 5MB)")
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return invalid("file must be an image")
	}
	return nil
}

func uploadImage(ctx context.Context, up ImageUploader, fh *multipart.FileHeader, prefix string) (string, error) {
	if err := checkImage(fh); err != nil {
		return "", err
	}
	url, err := up.Upload(ctx, fh, utils.ObjectKey(prefix, fh.Filename))
	if err != nil {
		return "", storeFailure("upload image", err)
	}
	return url, nil
}
