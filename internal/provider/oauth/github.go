package oauth

import (
	"context"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

const githubAPI = "https://api.github.com"

type GitHub struct {
	oauth  *oauth2.Config
	apiURL string
	http   *http.Client
}

func NewGitHub(cfg config.OAuthConfig, httpClient *http.Client) *GitHub {
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.GitHub,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiURL: githubAPI,
		http:   httpClient,
	}
}

var _ provider.SocialProvider = (*GitHub)(nil)

func (g *GitHub) Name() model.LoginProvider { return model.ProviderGitHub }

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *GitHub) Profile(ctx context.Context, code string) (*provider.SocialProfile, error) {
	if g.oauth.ClientID == "" {
		return nil, provider.ErrNotConfigured
	}
	tok, err := exchange(ctx, g.oauth, g.http, code)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+tok.AccessToken)

	var u githubUser
	if err := getJSON(ctx, g.http, g.apiURL+"/user", h, &u); err != nil {
		return nil, err
	}

	email := u.Email
	var emails []githubEmail
	if err := getJSON(ctx, g.http, g.apiURL+"/user/emails", h, &emails); err == nil {
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return &provider.SocialProfile{
		ID:         strconv.FormatInt(u.ID, 10),
		Email:      email,
		Name:       name,
		AvatarURL:  u.AvatarURL,
		ProfileURL: u.HTMLURL,
	}, nil
}
