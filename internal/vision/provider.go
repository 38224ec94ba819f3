package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ImageMode decides how the photo reaches the model.
type ImageMode int

const (
	// ModeURL sends the hosted image URL.
	ModeURL ImageMode = iota
	// ModeInline sends the image bytes as a base64 data URI.
	ModeInline
)

const maxAnswerTokens = 1024

type ProviderConfig struct {
	Name       string
	APIKey     string
	BaseURL    string
	Model      string
	Mode       ImageMode
	HTTPClient *http.Client
}

// Provider is one OpenAI-compatible endpoint (OpenRouter, NVIDIA, ...).
type Provider struct {
	name   string
	model  string
	mode   ImageMode
	client *openai.Client
}

func NewProvider(cfg ProviderConfig) *Provider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	return &Provider{
		name:   cfg.Name,
		model:  cfg.Model,
		mode:   cfg.Mode,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *Provider) Classify(ctx context.Context, req Request) (string, error) {
	imageURL, err := p.imageURL(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
		MaxTokens: maxAnswerTokens,
	})
	if err != nil {
		slog.Error("vision request failed", "provider", p.name, "model", p.model, "error", err)
		return "", fmt.Errorf("%s: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		slog.Error("vision response has no choices", "provider", p.name, "model", p.model)
		return "", fmt.Errorf("%s: %w", p.name, ErrNoAnswer)
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		slog.Error("vision response is empty", "provider", p.name, "model", p.model)
		return "", fmt.Errorf("%s: %w", p.name, ErrNoAnswer)
	}

	return answer, nil
}

func (p *Provider) imageURL(req Request) (string, error) {
	if p.mode == ModeURL {
		if req.ImageURL == "" {
			return "", ErrNoImageURL
		}
		return req.ImageURL, nil
	}

	encoded := req.ImageBase64
	if encoded == "" {
		encoded = base64.StdEncoding.EncodeToString(req.Image)
	}
	if len(encoded) > MaxInlineBase64 {
		return "", ErrImageTooLarge
	}
	return "data:" + req.MimeType + ";base64," + encoded, nil
}
