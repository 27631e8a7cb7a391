package feed

import (
	"github.com/AlibekovAA/snapfeed/internal/common/jwtverify"
	"github.com/AlibekovAA/snapfeed/internal/post/domain"
	"github.com/AlibekovAA/snapfeed/internal/post/dto"
)

type Viewer struct {
	ID        string
	Name      string
	Username  string
	AvatarURL string
	PostCount int
}

type Page struct {
	Viewer Viewer
	Posts  []dto.Post
}

type SigninPage struct {
	Error         string
	CallbackURL   string
	GoogleEnabled bool
}

// ComposePage builds the feed page for the signed-in viewer. The own post
// count is derived from the full feed rather than a separate query.
func ComposePage(claims jwtverify.Claims, feed []domain.FeedItem) Page {
	name := claims.Name
	if name == "" {
		name = claims.Username
	}
	return Page{
		Viewer: Viewer{
			ID:        claims.UserID,
			Name:      name,
			Username:  claims.Username,
			AvatarURL: claims.AvatarURL,
			PostCount: domain.CountByAuthor(feed, claims.UserID),
		},
		Posts: dto.FromFeed(feed),
	}
}

var signinErrors = map[string]string{
	"CredentialsSignin": "Invalid email or password.",
	"OAuthCallback":     "Sign in with the provider failed. Please try again.",
}

func signinErrorMessage(code string) string {
	if code == "" {
		return ""
	}
	if msg, ok := signinErrors[code]; ok {
		return msg
	}
	return "Sign in failed."
}
