package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"github.com/Deepthi94961/estate-admin/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo はMongoDBに接続し、疎通を確認したクライアントを返す。
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// mongoIndexes はコレクションごとの一意インデックス定義。
var mongoIndexes = map[string][]mongo.IndexModel{
	repository.CollectionUsers: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	repository.CollectionSuspendedUsers: {
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	repository.CollectionSettings: {
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	repository.CollectionListings: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	repository.CollectionNotifications: {
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	},
}

// EnsureMongoIndexes はインデックスを作成する。既存のインデックスはそのまま残る。
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, indexes := range mongoIndexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// SeedMongoSettings は未登録の既定設定を投入する。登録済みの値は変更しない。
func SeedMongoSettings(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(repository.CollectionSettings)
	for _, def := range model.SettingDefinitions() {
		_, err := coll.UpdateOne(ctx,
			bson.M{"name": def.Name},
			bson.M{"$setOnInsert": bson.M{
				"name":        def.Name,
				"value":       def.Default,
				"description": def.Description,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("failed to seed setting %q: %w", def.Name, err)
		}
	}
	return nil
}

// MigrateMongo はインデックス作成と既定設定の投入を行う。
func MigrateMongo(ctx context.Context, db *mongo.Database) error {
	if err := EnsureMongoIndexes(ctx, db); err != nil {
		return err
	}
	return SeedMongoSettings(ctx, db)
}
