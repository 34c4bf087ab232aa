package services

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	gamesCollection        = "games"
	commentsCollection     = "comments"
	usersCollection        = "users"
	userGamesCollection    = "user_games"
	contactFormsCollection = "contact_forms"
	userFlagsCollection    = "user_flags"
)

const mongoOpTimeout = 10 * time.Second

// ConnectMongo opens and pings a client. Atlas (mongodb+srv) connections are
// pinned to TLS 1.2, which some hosted environments need for server selection.
func ConnectMongo(ctx context.Context, mongoURI string) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(mongoURI)
	if strings.HasPrefix(mongoURI, "mongodb+srv://") {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

func opContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, mongoOpTimeout)
}
