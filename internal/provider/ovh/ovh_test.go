package ovh

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

func TestClient_Token(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/auth/tokens", r.URL.Path)
		var body authRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"password"}, body.Auth.Identity.Methods)
		assert.Equal(t, "svc", body.Auth.Identity.Password.User.Name)
		assert.Equal(t, "default", body.Auth.Identity.Password.User.Domain.ID)
		assert.Equal(t, "proj", body.Auth.Scope.Project.ID)

		w.Header().Set("X-Subject-Token", "gAAAA-token")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"token":{"expires_at":"2030-01-02T03:04:05.000000Z"}}`)
	}))
	defer srv.Close()

	c := New(config.OVHConfig{AuthURL: srv.URL + "/v3/", Username: "svc", Password: "pw", ProjectID: "proj", Domain: "Default"}, srv.Client())
	tok, err := c.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gAAAA-token", tok.Token)
	assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC), tok.ExpiresAt.UTC())
}

func TestClient_TokenErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"The request you have made requires authentication."}}`)
	}))
	defer srv.Close()

	_, err := New(config.OVHConfig{AuthURL: srv.URL, Username: "svc", Password: "bad"}, srv.Client()).Token(context.Background())
	assert.ErrorContains(t, err, "status 401")

	_, err = New(config.OVHConfig{AuthURL: srv.URL}, srv.Client()).Token(context.Background())
	assert.ErrorIs(t, err, provider.ErrNotConfigured)
}
