// Package media wraps the remote image host's upload API.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrNoImage = errors.New("no image provided")

// Uploader is the surface handlers depend on; tests substitute fakes.
type Uploader interface {
	Upload(ctx context.Context, encoded string) (string, error)
	UploadAll(ctx context.Context, encoded []string) ([]string, error)
}

type Client struct {
	HTTP *http.Client
	// UploadURL is the host's full upload endpoint.
	UploadURL string
	// Preset names the host-side upload preset (folder, overwrite policy).
	Preset string
}

func NewClient(uploadURL, preset string) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		UploadURL: uploadURL,
		Preset:    preset,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends one encoded image (data URI or base64 payload) to the host
// and returns its hosted secure URL.
func (c *Client) Upload(ctx context.Context, encoded string) (string, error) {
	if encoded == "" {
		return "", ErrNoImage
	}

	body, err := json.Marshal(map[string]string{
		"file":          encoded,
		"upload_preset": c.Preset,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.UploadURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("media host returned unexpected response (%s): %w", res.Status, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 || out.SecureURL == "" {
		msg := out.Error.Message
		if msg == "" {
			msg = res.Status
		}
		return "", fmt.Errorf("media host rejected upload: %s", msg)
	}
	return out.SecureURL, nil
}

// UploadAll uploads every image concurrently and waits for all of them.
// The batch is all-or-nothing: the first failure cancels the rest and no
// partial URL list is returned. Result order matches input order.
func (c *Client) UploadAll(ctx context.Context, encoded []string) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	urls := make([]string, len(encoded))
	for i, img := range encoded {
		i, img := i, img
		g.Go(func() error {
			u, err := c.Upload(ctx, img)
			if err != nil {
				return err
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
