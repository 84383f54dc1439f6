// Package photo stores attendance photos submitted as data URLs.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned when the payload is not a decodable image.
var ErrInvalidImage = errors.New("invalid image payload")

// URLPrefix is the public path stored photos are served under.
const URLPrefix = "/uploads/"

const jpegQuality = 80

// MaxPixels bounds the decoded size of a submitted image. Larger frames are
// rejected from their header before any pixel buffer is allocated.
const MaxPixels = 40_000_000

// Store writes photos as JPEG files under a directory.
type Store struct {
	dir      string
	maxWidth int
}

// NewStore prepares dir and returns a Store. Images wider than maxWidth are
// scaled down; zero disables resizing.
func NewStore(dir string, maxWidth int) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxWidth: maxWidth}, nil
}

// Dir is the directory photos are written to.
func (s *Store) Dir() string { return s.dir }

// Save decodes payload, a data URL or bare base64 string, and writes it as
// <unix-ms>_<userID>.jpg. It returns the public reference to the file.
func (s *Store) Save(ctx context.Context, userID int64, payload string, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := decodeDataURL(payload)
	if err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds the size limit", ErrInvalidImage, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}

	name := fmt.Sprintf("%d_%d.jpg", at.UnixMilli(), userID)
	if err := imaging.Save(img, filepath.Join(s.dir, name), imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return URLPrefix + name, nil
}

// Delete removes the file behind a reference returned by Save. Missing files
// are not an error.
func (s *Store) Delete(_ context.Context, ref string) error {
	if !strings.HasPrefix(ref, URLPrefix) {
		return fmt.Errorf("not a stored photo: %q", ref)
	}
	name := filepath.Base(strings.TrimPrefix(ref, URLPrefix))
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}

func decodeDataURL(image string) ([]byte, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	if strings.HasPrefix(image, "data:") {
		comma := strings.IndexByte(image, ',')
		if comma < 0 || !strings.HasSuffix(image[:comma], ";base64") {
			return nil, fmt.Errorf("%w: not a base64 data url", ErrInvalidImage)
		}
		image = image[comma+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return raw, nil
}
