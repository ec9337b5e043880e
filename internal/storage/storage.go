// Package storage saves recipe images and hands back the reference stored on the recipe.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageSize bounds a decoded image.
const MaxImageSize = 10 << 20

var (
	ErrInvalidImage     = errors.New("invalid image")
	ErrImageTooLarge    = errors.New("image is too large")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// ImageStorage persists images under a key and returns a public reference to them.
type ImageStorage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Image is a decoded upload ready to be stored.
type Image struct {
	Data        []byte
	Ext         string
	ContentType string
}

var allowedExt = map[string]string{
	"jpeg": "jpg",
	"jpg":  "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// ParseDataURI decodes "data:image/<ext>;base64,<payload>".
func ParseDataURI(s string) (*Image, error) {
	header, payload, ok := strings.Cut(s, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, fmt.Errorf("%w: expected data:image/<ext>;base64,<payload>", ErrInvalidImage)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return NewImage(data, strings.TrimPrefix(header, "data:image/"))
}

// NewImage validates raw image bytes. ext is the declared extension or subtype.
func NewImage(data []byte, ext string) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	normalized, ok := allowedExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content is %s", ErrInvalidImage, contentType)
	}

	return &Image{Data: data, Ext: normalized, ContentType: contentType}, nil
}

// Reader returns the image content.
func (img *Image) Reader() io.Reader {
	return bytes.NewReader(img.Data)
}

// RecipeImageKey builds recipes/YYYY/MM/DD/<uuid>.<ext>.
func RecipeImageKey(now time.Time, ext string) string {
	return path.Join("recipes", now.Format("2006/01/02"), uuid.New().String()+"."+ext)
}
