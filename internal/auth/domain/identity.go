package domain

import (
	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
)

// Identity is what an authenticated caller is known by. It never carries
// password material.
type Identity struct {
	ID        string
	Email     string
	Username  string
	Name      string
	AvatarURL string
}

func IdentityFromAccount(a accountdomain.Account) Identity {
	id := Identity{
		ID:       string(a.ID),
		Email:    a.Email,
		Username: a.Username,
		Name:     a.Name,
	}
	if a.AvatarURL != nil {
		id.AvatarURL = *a.AvatarURL
	}
	return id
}

// FederatedProfile is the subset of an external provider's user info used
// for find-or-create.
type FederatedProfile struct {
	Provider  string
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}
