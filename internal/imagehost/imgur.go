package imagehost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const imgurEndpoint = "https://api.imgur.com/3/image"

type Imgur struct {
	client   *http.Client
	clientID string
	endpoint string
}

func NewImgur(client *http.Client, clientID string) *Imgur {
	return &Imgur{client: client, clientID: clientID, endpoint: imgurEndpoint}
}

type imgurResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (h *Imgur) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(data))
	form.Set("type", "base64")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+h.clientID)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("imgur upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("imgur upload: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", &upstreamError{host: "imgur", status: resp.StatusCode, body: string(body)}
	}

	var out imgurResponse
	err = json.Unmarshal(body, &out)
	if err != nil {
		return "", fmt.Errorf("imgur upload: decode response: %w", err)
	}
	if !out.Success || out.Data.Link == "" {
		return "", fmt.Errorf("imgur upload: response has no link")
	}

	return out.Data.Link, nil
}
