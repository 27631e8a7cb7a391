package domain

import "time"

type ID string

type Post struct {
	ID        ID
	UserID    string
	Content   string
	Images    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Author is the display subset of an account shown next to a post.
type Author struct {
	ID        string
	Username  string
	Name      string
	AvatarURL string
}

type FeedItem struct {
	Post
	Author Author
}

// CountByAuthor returns how many items in feed were written by userID.
func CountByAuthor(feed []FeedItem, userID string) int {
	n := 0
	for _, item := range feed {
		if item.UserID == userID {
			n++
		}
	}
	return n
}
