package models

import (
	"regexp"
	"strings"
	"time"
)

const (
	MinGameYear       = 1975
	MaxGameYear       = 2050
	MinRating         = 1
	MaxRating         = 10
	maxGameFieldLen   = 70
	maxDescriptionLen = 100
)

var imageURLPattern = regexp.MustCompile(`^https?://.+`)

// Game is a catalog entry. UserID and UserDisplayName identify the creator.
type Game struct {
	ID              string    `json:"id" bson:"_id"`
	Title           string    `json:"title" bson:"title"`
	Year            int       `json:"year" bson:"year"`
	Designer        string    `json:"designer" bson:"designer"`
	Artist          string    `json:"artist" bson:"artist"`
	Publisher       string    `json:"publisher" bson:"publisher"`
	Rating          int       `json:"rating" bson:"rating"`
	Category        string    `json:"category" bson:"category"`
	Description     string    `json:"description" bson:"description"`
	Image           string    `json:"image" bson:"image"`
	UserID          string    `json:"user_id" bson:"user_id"`
	UserDisplayName string    `json:"user_display_name" bson:"user_display_name"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// GameView is a game as rendered in catalog and gallery listings.
type GameView struct {
	Game
	CreatedAgo   string `json:"created_ago"`
	InCollection bool   `json:"in_collection"`
}

type GameRequest struct {
	Title       string `json:"title"`
	Year        *int   `json:"year"`
	Designer    string `json:"designer"`
	Artist      string `json:"artist"`
	Publisher   string `json:"publisher"`
	Rating      *int   `json:"rating"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ValidateCreate checks a new game. The year is bounded on both sides.
func (r *GameRequest) ValidateCreate() map[string]string {
	errors := r.validate()
	if _, ok := errors["year"]; !ok && *r.Year > MaxGameYear {
		errors["year"] = "Year cannot be more than 2050"
	}
	return errors
}

// ValidateUpdate checks an edited game. Only the lower year bound applies.
func (r *GameRequest) ValidateUpdate() map[string]string {
	return r.validate()
}

func (r *GameRequest) validate() map[string]string {
	errors := make(map[string]string)

	requireText(errors, "title", r.Title, "Title is required", "Title too long", maxGameFieldLen)
	requireText(errors, "designer", r.Designer, "Designer is required", "Designer name too long", maxGameFieldLen)
	requireText(errors, "artist", r.Artist, "Artist is required", "Artist name too long", maxGameFieldLen)
	requireText(errors, "publisher", r.Publisher, "Publisher is required", "Publisher name too long", maxGameFieldLen)
	requireText(errors, "category", r.Category, "Category is required", "Category too long", maxGameFieldLen)
	requireText(errors, "description", r.Description, "Description is required", "Description too long", maxDescriptionLen)

	if r.Year == nil {
		errors["year"] = "Year is required"
	} else if *r.Year < MinGameYear {
		errors["year"] = "Year must be at least 1975"
	}

	if r.Rating == nil {
		errors["rating"] = "Rating is required"
	} else if *r.Rating < MinRating {
		errors["rating"] = "Rating must be at least 1"
	} else if *r.Rating > MaxRating {
		errors["rating"] = "Rating cannot be more than 10"
	}

	image := strings.TrimSpace(r.Image)
	if image == "" {
		errors["image"] = "Image URL is required"
	} else if !imageURLPattern.MatchString(image) {
		errors["image"] = `URL must start with "http://" or "https://"`
	}

	return errors
}

// Apply copies the request fields onto g. Call only after validation.
func (r *GameRequest) Apply(g *Game) {
	g.Title = strings.TrimSpace(r.Title)
	g.Year = *r.Year
	g.Designer = strings.TrimSpace(r.Designer)
	g.Artist = strings.TrimSpace(r.Artist)
	g.Publisher = strings.TrimSpace(r.Publisher)
	g.Rating = *r.Rating
	g.Category = strings.TrimSpace(r.Category)
	g.Description = strings.TrimSpace(r.Description)
	g.Image = strings.TrimSpace(r.Image)
}

func requireText(errors map[string]string, field, value, requiredMsg, tooLongMsg string, max int) {
	v := strings.TrimSpace(value)
	if v == "" {
		errors[field] = requiredMsg
	} else if len([]rune(v)) > max {
		errors[field] = tooLongMsg
	}
}
