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

type listingDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	Price        float64            `bson:"price"`
	PropertyType string             `bson:"property_type"`
	Availability string             `bson:"availability"`
	Status       string             `bson:"status"`
	CreatedAt    *time.Time         `bson:"created_at,omitempty"`
}

func (d *listingDoc) toModel() *model.Listing {
	l := &model.Listing{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Price:        d.Price,
		PropertyType: d.PropertyType,
		Availability: d.Availability,
		Status:       model.ListingStatus(d.Status),
	}
	if d.CreatedAt != nil {
		t := d.CreatedAt.UTC()
		l.CreatedAt = &t
	}
	return l
}

// MongoListingRepo はMongoDBを使用した物件掲載リポジトリ。
type MongoListingRepo struct {
	coll *mongo.Collection
}

// NewMongoListingRepo はMongoListingRepoを生成する。
func NewMongoListingRepo(db *mongo.Database) *MongoListingRepo {
	return &MongoListingRepo{coll: db.Collection(CollectionListings)}
}

// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
func (r *MongoListingRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc listingDoc
	found, err := findOne(ctx, r.coll, bson.M{"_id": oid}, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	if !found {
		return nil, nil
	}
	return doc.toModel(), nil
}

// List は掲載をcreated_at降順で返す。created_atを持たない旧データは末尾に並ぶ。
func (r *MongoListingRepo) List(ctx context.Context, status model.ListingStatus) ([]*model.Listing, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	listings := make([]*model.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, docs[i].toModel())
	}
	return listings, nil
}

// Create は掲載を作成する。
func (r *MongoListingRepo) Create(ctx context.Context, listing *model.Listing) error {
	if listing.CreatedAt == nil {
		now := time.Now().UTC()
		listing.CreatedAt = &now
	}

	doc := listingDoc{
		ID:           primitive.NewObjectID(),
		Title:        listing.Title,
		Description:  listing.Description,
		Price:        listing.Price,
		PropertyType: listing.PropertyType,
		Availability: listing.Availability,
		Status:       string(listing.Status),
		CreatedAt:    listing.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	listing.ID = doc.ID.Hex()
	return nil
}

// UpdateStatus は掲載の審査状態を更新する。
func (r *MongoListingRepo) UpdateStatus(ctx context.Context, id string, status model.ListingStatus) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete は掲載を物理削除する。
func (r *MongoListingRepo) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ ListingRepository = (*MongoListingRepo)(nil)
