package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDBのコレクション名。
const (
	CollectionUsers          = "users"
	CollectionSuspendedUsers = "suspendedUsers"
	CollectionListings       = "listings"
	CollectionSettings       = "settings"
	CollectionNotifications  = "notifications"
)

// parseObjectID はMongoDBの主キー形式であるObjectIDを検証する。
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// findOne は1件検索し、見つからない場合はfalseを返す。
func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) (bool, error) {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// mongoPinger はmongo.ClientをHealthCheckerに適合させる。
type mongoPinger struct {
	client *mongo.Client
}

// PingContext はプライマリへの疎通を確認する。
func (p mongoPinger) PingContext(ctx context.Context) error {
	if err := p.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// NewMongoStore はMongoDBバックエンドのStoreを組み立てる。
func NewMongoStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Users:         NewMongoUserRepo(db),
		Suspensions:   NewMongoSuspensionRepo(db),
		Listings:      NewMongoListingRepo(db),
		Settings:      NewMongoSettingRepo(db),
		Notifications: NewMongoNotificationRepo(db),
		Health:        mongoPinger{client: client},
	}
}
