package oauth

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/model"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

const stackExchangeAPI = "https://api.stackexchange.com/2.3"

var stackExchangeEndpoint = oauth2.Endpoint{
	AuthURL:   "https://stackoverflow.com/oauth",
	TokenURL:  "https://stackoverflow.com/oauth/access_token/json",
	AuthStyle: oauth2.AuthStyleInParams,
}

// StackOverflow logs users in through StackExchange. The API exposes no email address.
type StackOverflow struct {
	oauth  *oauth2.Config
	key    string
	apiURL string
	http   *http.Client
}

func NewStackOverflow(cfg config.OAuthConfig, httpClient *http.Client) *StackOverflow {
	return &StackOverflow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     stackExchangeEndpoint,
		},
		key:    cfg.Key,
		apiURL: stackExchangeAPI,
		http:   httpClient,
	}
}

var _ provider.SocialProvider = (*StackOverflow)(nil)

func (s *StackOverflow) Name() model.LoginProvider { return model.ProviderStackOverflow }

type stackUser struct {
	UserID       int64  `json:"user_id"`
	DisplayName  string `json:"display_name"`
	ProfileImage string `json:"profile_image"`
	Link         string `json:"link"`
}

type stackResponse struct {
	Items []stackUser `json:"items"`
}

func (s *StackOverflow) Profile(ctx context.Context, code string) (*provider.SocialProfile, error) {
	if s.oauth.ClientID == "" {
		return nil, provider.ErrNotConfigured
	}
	tok, err := exchange(ctx, s.oauth, s.http, code)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("site", "stackoverflow")
	q.Set("key", s.key)
	q.Set("access_token", tok.AccessToken)

	var out stackResponse
	if err := getJSON(ctx, s.http, s.apiURL+"/me?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, errors.New("stackexchange: empty profile")
	}
	u := out.Items[0]
	return &provider.SocialProfile{
		ID:         strconv.FormatInt(u.UserID, 10),
		Name:       html.UnescapeString(u.DisplayName),
		AvatarURL:  u.ProfileImage,
		ProfileURL: u.Link,
	}, nil
}
