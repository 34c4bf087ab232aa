package models

import (
	"strings"
	"time"
)

const MaxCommentLength = 200

const anonymousName = "Anonymous"

type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	Text      string    `json:"text" bson:"text"`
	UserID    string    `json:"user_id" bson:"user_id"`
	UserName  string    `json:"user_name" bson:"user_name"`
	GameID    string    `json:"game_id" bson:"game_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type CommentView struct {
	Comment
	CreatedAgo string `json:"created_ago"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

func (r *CommentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	text := strings.TrimSpace(r.Text)
	if text == "" {
		errors["text"] = "Comment is required"
	} else if len([]rune(text)) > MaxCommentLength {
		errors["text"] = "Comment cannot be more than 200 characters"
	}

	return errors
}

// CommentAuthorName falls back to a placeholder when the author has no display name.
func CommentAuthorName(displayName string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	return anonymousName
}
