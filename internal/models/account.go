package models

// DeleteAccountResult lists what was removed along with the account.
type DeleteAccountResult struct {
	ImageURLs         []string `json:"image_urls"`
	CommentsDeleted   int64    `json:"comments_deleted"`
	CollectionRemoved int64    `json:"collection_removed"`
}
