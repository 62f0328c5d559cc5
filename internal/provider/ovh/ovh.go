// Package ovh authenticates against the OVH Public Cloud Keystone endpoint.
package ovh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

type Client struct {
	cfg  config.OVHConfig
	http *http.Client
}

func New(cfg config.OVHConfig, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, http: httpClient}
}

var _ provider.TokenProvider = (*Client)(nil)

type authRequest struct {
	Auth struct {
		Identity struct {
			Methods  []string `json:"methods"`
			Password struct {
				User struct {
					Name   string `json:"name"`
					Domain struct {
						ID string `json:"id"`
					} `json:"domain"`
					Password string `json:"password"`
				} `json:"user"`
			} `json:"password"`
		} `json:"identity"`
		Scope struct {
			Project struct {
				ID string `json:"id"`
			} `json:"project"`
		} `json:"scope"`
	} `json:"auth"`
}

type authResponse struct {
	Token struct {
		ExpiresAt time.Time `json:"expires_at"`
	} `json:"token"`
}

// Token performs a Keystone v3 password authentication scoped to the configured project.
func (c *Client) Token(ctx context.Context) (*provider.ObjectStoreToken, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return nil, provider.ErrNotConfigured
	}

	var body authRequest
	body.Auth.Identity.Methods = []string{"password"}
	body.Auth.Identity.Password.User.Name = c.cfg.Username
	body.Auth.Identity.Password.User.Domain.ID = strings.ToLower(c.cfg.Domain)
	body.Auth.Identity.Password.User.Password = c.cfg.Password
	body.Auth.Scope.Project.ID = c.cfg.ProjectID

	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.AuthURL, "/")+"/auth/tokens", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ovh auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ovh auth: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	token := resp.Header.Get("X-Subject-Token")
	if token == "" {
		return nil, fmt.Errorf("ovh auth: missing X-Subject-Token header")
	}
	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ovh decode: %w", err)
	}
	return &provider.ObjectStoreToken{Token: token, ExpiresAt: out.Token.ExpiresAt}, nil
}
