package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	authdomain "github.com/AlibekovAA/snapfeed/internal/auth/domain"
)

const (
	GoogleProviderName = "google"
	googleUserInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
)

type googleUserInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

// WithEndpoints points the provider at alternative token and userinfo
// endpoints.
func (p *GoogleProvider) WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) *GoogleProvider {
	p.config.Endpoint = endpoint
	p.userInfoURL = userInfoURL
	return p
}

func (p *GoogleProvider) Name() string {
	return GoogleProviderName
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (authdomain.FederatedProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return authdomain.FederatedProfile{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return authdomain.FederatedProfile{}, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return authdomain.FederatedProfile{}, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return authdomain.FederatedProfile{}, fmt.Errorf("%w: status %d", ErrProfileFetch, resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return authdomain.FederatedProfile{}, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	if info.EmailVerified != nil && !*info.EmailVerified {
		return authdomain.FederatedProfile{}, ErrEmailNotVerified
	}

	return authdomain.FederatedProfile{
		Provider:  GoogleProviderName,
		Subject:   info.Subject,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}
