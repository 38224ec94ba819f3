package imagehost

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const freeImageHostEndpoint = "https://freeimage.host/api/1/upload"

type FreeImageHost struct {
	client   *http.Client
	apiKey   string
	endpoint string
}

func NewFreeImageHost(client *http.Client, apiKey string) *FreeImageHost {
	return &FreeImageHost{client: client, apiKey: apiKey, endpoint: freeImageHostEndpoint}
}

type freeImageHostResponse struct {
	StatusCode int `json:"status_code"`
	Image      struct {
		URL string `json:"url"`
	} `json:"image"`
}

func (h *FreeImageHost) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"key":    h.apiKey,
		"action": "upload",
		"source": base64.StdEncoding.EncodeToString(data),
		"format": "json",
	}
	for name, value := range fields {
		err := w.WriteField(name, value)
		if err != nil {
			return "", err
		}
	}
	err := w.Close()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("freeimagehost upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("freeimagehost upload: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", &upstreamError{host: "freeimagehost", status: resp.StatusCode, body: string(body)}
	}

	var out freeImageHostResponse
	err = json.Unmarshal(body, &out)
	if err != nil {
		return "", fmt.Errorf("freeimagehost upload: decode response: %w", err)
	}
	if out.Image.URL == "" {
		return "", fmt.Errorf("freeimagehost upload: response has no url")
	}

	return out.Image.URL, nil
}
