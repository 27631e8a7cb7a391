package oauth

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	authdomain "github.com/AlibekovAA/snapfeed/internal/auth/domain"
)

var (
	ErrUnknownProvider  = errors.New("unknown identity provider")
	ErrExchangeFailed   = errors.New("authorization code exchange failed")
	ErrProfileFetch     = errors.New("failed to fetch provider profile")
	ErrEmailNotVerified = errors.New("provider email is not verified")
)

// Provider is an external identity provider speaking the authorization code
// flow.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (authdomain.FederatedProfile, error)
}

type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewState returns an unguessable value for the state parameter.
func NewState() string {
	return uuid.NewString()
}
