package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Message   string             `bson:"message"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// MongoNotificationRepo はMongoDBを使用した通知リポジトリ。
type MongoNotificationRepo struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepo はMongoNotificationRepoを生成する。
func NewMongoNotificationRepo(db *mongo.Database) *MongoNotificationRepo {
	return &MongoNotificationRepo{coll: db.Collection(CollectionNotifications)}
}

// Create は通知を作成する。
func (r *MongoNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	doc := notificationDoc{ID: primitive.NewObjectID(), Message: n.Message, CreatedAt: n.CreatedAt}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	n.ID = doc.ID.Hex()
	return nil
}

// List は通知をcreatedAt昇順で返す。
func (r *MongoNotificationRepo) List(ctx context.Context) ([]*model.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	notifications := make([]*model.Notification, 0, len(docs))
	for _, d := range docs {
		notifications = append(notifications, &model.Notification{
			ID:        d.ID.Hex(),
			Message:   d.Message,
			CreatedAt: d.CreatedAt.UTC(),
		})
	}
	return notifications, nil
}

// Delete は指定IDの通知を削除する。
func (r *MongoNotificationRepo) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll は全通知を削除し、削除件数を返す。
func (r *MongoNotificationRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return res.DeletedCount, nil
}

// DeleteOlderThan はcutoffより前に作成された通知を削除し、削除件数を返す。
func (r *MongoNotificationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}
	return res.DeletedCount, nil
}

// compile-time interface check
var _ NotificationRepository = (*MongoNotificationRepo)(nil)
