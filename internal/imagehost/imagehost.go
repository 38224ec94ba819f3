// Package imagehost uploads classification photos to a public image host
// and returns a URL the vision model can fetch.
package imagehost

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ecosnap/ecosnap/internal/config"
)

// Host uploads one image and returns its public URL.
type Host interface {
	Upload(ctx context.Context, data []byte, mimeType string) (string, error)
}

// New picks the host named by IMAGE_HOST.
func New(ctx context.Context, c *config.Config) (Host, error) {
	client := &http.Client{Timeout: c.UpstreamTimeout}

	slog.Info("initializing image host", "host", c.ImageHost)

	switch c.ImageHost {
	case "freeimagehost":
		if c.FreeImageHostAPIKey == "" {
			return nil, fmt.Errorf("image host freeimagehost requires FREEIMAGEHOST_API_KEY")
		}
		return NewFreeImageHost(client, c.FreeImageHostAPIKey), nil
	case "imgur":
		if c.ImgurClientID == "" {
			return nil, fmt.Errorf("image host imgur requires IMGUR_CLIENT_ID")
		}
		return NewImgur(client, c.ImgurClientID), nil
	case "s3":
		return NewS3(ctx, S3Config{
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Endpoint:      c.S3Endpoint,
			PresignExpiry: c.S3PresignExpiry,
			HTTPClient:    client,
		})
	default:
		return nil, fmt.Errorf("unknown image host %q", c.ImageHost)
	}
}

// upstreamError describes a non-2xx answer from a host API.
type upstreamError struct {
	host   string
	status int
	body   string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("%s upload failed: status %d: %s", e.host, e.status, e.body)
}
