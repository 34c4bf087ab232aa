package models

import (
	"time"
)

// CollectionEntry is a game snapshot saved to a user's collection.
type CollectionEntry struct {
	UserID  string    `json:"user_id" bson:"user_id"`
	GameID  string    `json:"game_id" bson:"game_id"`
	Game    Game      `json:"game" bson:"game"`
	AddedAt time.Time `json:"added_at" bson:"added_at"`
}
