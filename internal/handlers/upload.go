package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"jobalert/internal/apperr"
)

const (
	// maxUploadSize is the maximum accepted thumbnail upload (10 MB).
	maxUploadSize = 10 << 20

	// thumbMaxWidth is the widest a stored thumbnail may be.
	thumbMaxWidth = 800

	// thumbQuality is the JPEG quality for downscaled thumbnails.
	thumbQuality = 80

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// allowedImageTypes are the MIME types accepted as post thumbnails.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ObjectStore stores uploaded files. *storage.Client implements it.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
}

// uploadedObject is a file that reached object storage during a request.
type uploadedObject struct {
	key string
	url string
}

// uploadThumbnail validates an uploaded image, downscales it when wider
// than thumbMaxWidth and stores it. GIFs are stored as-is to keep
// animation.
func (a *API) uploadThumbnail(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*uploadedObject, error) {
	if a.objects == nil {
		return nil, apperr.Unavailable("Object storage is not configured")
	}
	if header.Size > maxUploadSize {
		return nil, apperr.TooLarge("File too large. Maximum size is 10 MB.")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return nil, apperr.TooLarge("File too large. Maximum size is 10 MB.")
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, apperr.Validation(map[string]string{
			"file": fmt.Sprintf("file type %q is not allowed", contentType),
		})
	}

	if contentType != "image/gif" {
		thumb, err := generateThumbnail(bytes.NewReader(data), thumbMaxWidth)
		if err != nil {
			return nil, apperr.Validation(map[string]string{"file": "image could not be decoded"})
		}
		if thumb != nil {
			data, contentType = thumb, "image/jpeg"
		}
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("posts/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), extensionFromType(contentType))
	if err := a.objects.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("upload thumbnail: %w", err)
	}

	return &uploadedObject{key: key, url: a.objects.FileURL(key)}, nil
}

// discardObject deletes an object whose database write failed.
func (a *API) discardObject(ctx context.Context, obj *uploadedObject) {
	if obj == nil {
		return
	}
	if err := a.objects.Delete(context.WithoutCancel(ctx), obj.key); err != nil {
		slog.Warn("orphaned thumbnail cleanup failed", "error", err, "key", obj.key)
	}
}

// deleteStoredURL removes the object behind rawURL if it lives in our
// storage. Failures are logged only.
func (a *API) deleteStoredURL(ctx context.Context, rawURL *string) {
	if a.objects == nil || rawURL == nil {
		return
	}
	key, ok := a.objects.ExtractKey(*rawURL)
	if !ok {
		return
	}
	if err := a.objects.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("thumbnail delete failed", "error", err, "key", key)
	}
}

// generateThumbnail creates a JPEG thumbnail from an image, constrained
// to maxWidth while preserving aspect ratio. Returns nil if the image is
// already narrow enough.
func generateThumbnail(src io.ReadSeeker, maxWidth int) ([]byte, error) {
	// Decode config first to check dimensions without full decode.
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	if imgCfg.Width <= maxWidth {
		return nil, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := max(1, int(float64(bounds.Dy())*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// extensionFromType returns a file extension for known image MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
