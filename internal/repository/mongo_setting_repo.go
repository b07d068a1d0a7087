package repository

import (
	"context"
	"fmt"

	"github.com/Deepthi94961/estate-admin/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type settingDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Value       string             `bson:"value"`
	Description string             `bson:"description"`
}

func (d *settingDoc) toModel() *model.Setting {
	return &model.Setting{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Value:       d.Value,
		Description: d.Description,
	}
}

// MongoSettingRepo はMongoDBを使用したシステム設定リポジトリ。
type MongoSettingRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingRepo はMongoSettingRepoを生成する。
func NewMongoSettingRepo(db *mongo.Database) *MongoSettingRepo {
	return &MongoSettingRepo{coll: db.Collection(CollectionSettings)}
}

// FindByName は設定名で設定を取得する。見つからない場合はnilを返す。
func (r *MongoSettingRepo) FindByName(ctx context.Context, name string) (*model.Setting, error) {
	var doc settingDoc
	found, err := findOne(ctx, r.coll, bson.M{"name": name}, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to find setting: %w", err)
	}
	if !found {
		return nil, nil
	}
	return doc.toModel(), nil
}

// List は保存済みの全設定を名前順で返す。
func (r *MongoSettingRepo) List(ctx context.Context) ([]*model.Setting, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	var docs []settingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	settings := make([]*model.Setting, 0, len(docs))
	for i := range docs {
		settings = append(settings, docs[i].toModel())
	}
	return settings, nil
}

// UpsertAll は設定を順序付きBulkWriteでUPSERTする。
// MongoDBではトランザクションを使わないため、途中で失敗した場合は先行分が反映済みになる。
// 値の検証は呼び出し側で全件済ませてから呼ぶこと。
func (r *MongoSettingRepo) UpsertAll(ctx context.Context, settings []*model.Setting) error {
	if len(settings) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(settings))
	for _, s := range settings {
		set := bson.M{"value": s.Value}
		if s.Description != "" {
			set["description"] = s.Description
		}
		update := bson.M{"$set": set}
		if s.Description == "" {
			update["$setOnInsert"] = bson.M{"description": ""}
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"name": s.Name}).
			SetUpdate(update).
			SetUpsert(true))
	}

	if _, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SettingRepository = (*MongoSettingRepo)(nil)
