package http

import (
	authdomain "github.com/AlibekovAA/snapfeed/internal/auth/domain"
)

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signinRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
}

type signupResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type signinResponse struct {
	User userResponse `json:"user"`
}

type sessionResponse struct {
	User    *userResponse `json:"user,omitempty"`
	Expires string        `json:"expires,omitempty"`
}

type providerResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	SigninURL string `json:"signinUrl"`
}

type providersResponse struct {
	Providers []providerResponse `json:"providers"`
}

func toUserResponse(identity authdomain.Identity) userResponse {
	return userResponse{
		ID:       identity.ID,
		Email:    identity.Email,
		Username: identity.Username,
		Name:     identity.Name,
		Image:    identity.AvatarURL,
	}
}
