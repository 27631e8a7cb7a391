package dto

import (
	"time"

	"github.com/AlibekovAA/snapfeed/internal/post/domain"
)

type Author struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
	User      Author    `json:"user"`
}

func FromFeedItem(item domain.FeedItem) Post {
	images := item.Images
	if images == nil {
		images = []string{}
	}
	return Post{
		ID:        string(item.ID),
		Content:   item.Content,
		Images:    images,
		CreatedAt: item.CreatedAt,
		User: Author{
			ID:           item.Author.ID,
			Username:     item.Author.Username,
			Name:         item.Author.Name,
			ProfileImage: item.Author.AvatarURL,
		},
	}
}

func FromFeed(items []domain.FeedItem) []Post {
	result := make([]Post, len(items))
	for i, item := range items {
		result[i] = FromFeedItem(item)
	}
	return result
}
