// Package vimeo creates tus uploads and deletes videos through the Vimeo API.
package vimeo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

const acceptHeader = "application/vnd.vimeo.*+json;version=3.4"

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg config.VimeoConfig, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		http:    httpClient,
	}
}

var _ provider.VideoProvider = (*Client)(nil)

type createRequest struct {
	Name   string `json:"name,omitempty"`
	Upload struct {
		Approach string `json:"approach"`
		Size     string `json:"size"`
	} `json:"upload"`
}

type createResponse struct {
	URI    string `json:"uri"`
	Upload struct {
		UploadLink string `json:"upload_link"`
	} `json:"upload"`
}

func (c *Client) CreateUpload(ctx context.Context, name string, size int64) (*provider.VideoUpload, error) {
	var body createRequest
	body.Name = name
	body.Upload.Approach = "tus"
	body.Upload.Size = strconv.FormatInt(size, 10)

	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/me/videos", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError("create upload", resp)
	}
	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vimeo decode: %w", err)
	}
	return &provider.VideoUpload{
		URI:        out.URI,
		VideoID:    path.Base(out.URI),
		UploadLink: out.Upload.UploadLink,
	}, nil
}

func (c *Client) Delete(ctx context.Context, videoID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/videos/"+videoID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return provider.ErrNotFound
	}
	return statusError("delete video", resp)
}

func (c *Client) do(ctx context.Context, method, p string, body io.Reader) (*http.Response, error) {
	if c.token == "" {
		return nil, provider.ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "bearer "+c.token)
	req.Header.Set("Accept", acceptHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vimeo %s %s: %w", method, p, err)
	}
	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("vimeo %s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(b)))
}
