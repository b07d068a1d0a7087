package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type suspensionDoc struct {
	UserID    primitive.ObjectID `bson:"userId"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// MongoSuspensionRepo はsuspendedUsersコレクションを使用した停止マーカーリポジトリ。
type MongoSuspensionRepo struct {
	coll *mongo.Collection
}

// NewMongoSuspensionRepo はMongoSuspensionRepoを生成する。
func NewMongoSuspensionRepo(db *mongo.Database) *MongoSuspensionRepo {
	return &MongoSuspensionRepo{coll: db.Collection(CollectionSuspendedUsers)}
}

// Exists は指定ユーザーの停止マーカーが存在するかを返す。
func (r *MongoSuspensionRepo) Exists(ctx context.Context, userID string) (bool, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return false, err
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check suspension: %w", err)
	}
	return n > 0, nil
}

// ListUserIDs は停止中ユーザーIDの集合を返す。
func (r *MongoSuspensionRepo) ListUserIDs(ctx context.Context) (map[string]struct{}, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list suspensions: %w", err)
	}
	var docs []suspensionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode suspensions: %w", err)
	}

	ids := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		ids[d.UserID.Hex()] = struct{}{}
	}
	return ids, nil
}

// Suspend は停止マーカーを$setOnInsertでUPSERTする。既存マーカーは変更しない。
func (r *MongoSuspensionRepo) Suspend(ctx context.Context, userID string) error {
	oid, err := parseObjectID(userID)
	if err != nil {
		return err
	}

	_, err = r.coll.UpdateOne(ctx,
		bson.M{"userId": oid},
		bson.M{"$setOnInsert": suspensionDoc{UserID: oid, CreatedAt: time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	// 同時実行時のUPSERT競合は既に停止済みとみなす
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to insert suspension: %w", err)
	}
	return nil
}

// Reactivate は停止マーカーを削除する。
func (r *MongoSuspensionRepo) Reactivate(ctx context.Context, userID string) error {
	oid, err := parseObjectID(userID)
	if err != nil {
		return err
	}

	if _, err := r.coll.DeleteMany(ctx, bson.M{"userId": oid}); err != nil {
		return fmt.Errorf("failed to delete suspension: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SuspensionRepository = (*MongoSuspensionRepo)(nil)
