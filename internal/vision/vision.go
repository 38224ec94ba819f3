// Package vision asks a hosted vision-language model about a photo through
// an OpenAI-compatible chat completions API.
package vision

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecosnap/ecosnap/internal/config"
)

// MaxInlineBase64 is the longest base64 payload sent inline as a data URI.
// Larger photos can only be classified by URL.
const MaxInlineBase64 = 180000

var (
	ErrNoAnswer      = errors.New("model returned no answer")
	ErrImageTooLarge = errors.New("image too large to send inline")
	ErrNoImageURL    = errors.New("image url is required")
)

// Request is one photo plus the instruction for the model. ImageURL is
// used by URL-mode providers, Image and MimeType by inline-mode ones.
// ImageBase64, when set, is the already encoded Image.
type Request struct {
	ImageURL    string
	Image       []byte
	ImageBase64 string
	MimeType    string
	Prompt      string
}

type Classifier interface {
	Classify(ctx context.Context, req Request) (string, error)
}

// New builds the configured primary provider and, when a fallback key is
// set, chains the inline fallback behind it.
func New(c *config.Config) Classifier {
	client := &http.Client{
		Timeout:   c.UpstreamTimeout,
		Transport: &titleTransport{title: c.AppName, base: http.DefaultTransport},
	}

	primary := NewProvider(ProviderConfig{
		Name:       "primary",
		APIKey:     c.VisionAPIKey,
		BaseURL:    c.VisionBaseURL,
		Model:      c.VisionModel,
		Mode:       ModeURL,
		HTTPClient: client,
	})
	if c.VisionFallbackAPIKey == "" {
		return primary
	}

	fallback := NewProvider(ProviderConfig{
		Name:       "fallback",
		APIKey:     c.VisionFallbackAPIKey,
		BaseURL:    c.VisionFallbackBaseURL,
		Model:      c.VisionFallbackModel,
		Mode:       ModeInline,
		HTTPClient: client,
	})
	slog.Info("vision fallback enabled", "model", c.VisionFallbackModel)

	return Chain{primary, fallback}
}

// Chain tries each classifier in order and returns the first answer.
type Chain []Classifier

func (c Chain) Classify(ctx context.Context, req Request) (string, error) {
	var errs []error
	for _, classifier := range c {
		answer, err := classifier.Classify(ctx, req)
		if err == nil {
			return answer, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

// titleTransport adds the X-Title header OpenRouter uses to attribute
// requests to an app.
type titleTransport struct {
	title string
	base  http.RoundTripper
}

func (t *titleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.title == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(req)
}
