package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const FavouriteColName = "favourites"

type FavouriteRepo interface {
	AddToFavourites(ctx context.Context, userID uuid.UUID, eventID int64) error
	RemoveFromFavourites(ctx context.Context, userID uuid.UUID, eventID int64) error
	// GetFavouriteEventIDs returns event ids, most recently added first.
	GetFavouriteEventIDs(ctx context.Context, userID uuid.UUID) ([]int64, error)
	IsFavourite(ctx context.Context, userID uuid.UUID, eventID int64) (bool, error)
}

type FavouriteItem struct {
	EventID int64     `bson:"event_id" json:"eventId"`
	AddedAt time.Time `bson:"added_at" json:"addedAt"`
}

// Favourite is the per-user document kept by the MongoDB store. Items are
// keyed by the decimal event id so add and remove are single-field updates.
type Favourite struct {
	ID        primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	UserID    string                   `bson:"user_id" json:"userId"`
	Items     map[string]FavouriteItem `bson:"items" json:"items"`
	CreatedAt time.Time                `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time                `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func itemKey(eventID int64) string {
	return "items." + strconv.FormatInt(eventID, 10)
}

// EnsureFavouriteIndexes creates the unique user_id index.
func (mdb *MongodbRepo) EnsureFavouriteIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return err
	}
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("create favourites index: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) AddToFavourites(ctx context.Context, userID uuid.UUID, eventID int64) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now().UTC()
	key := itemKey(eventID)

	// Only stamp added_at the first time, so re-adding keeps the original order.
	filter := bson.M{"user_id": userID.String(), key: bson.M{"$exists": false}}
	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
			key:          FavouriteItem{EventID: eventID, AddedAt: now},
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err = col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// The document exists and already holds this item.
		return nil
	}
	if err != nil {
		return fmt.Errorf("error upserting favourite: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) RemoveFromFavourites(ctx context.Context, userID uuid.UUID, eventID int64) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{"user_id": userID.String()}
	update := bson.M{
		"$unset": bson.M{itemKey(eventID): ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}

	if _, err := col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("error removing favourite: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetFavouriteEventIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var fav Favourite
	err = col.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&fav)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding favourites: %w", err)
	}

	return sortedFavouriteIDs(fav.Items), nil
}

func (mdb *MongodbRepo) IsFavourite(ctx context.Context, userID uuid.UUID, eventID int64) (bool, error) {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %w", err)
	}

	n, err := col.CountDocuments(ctx, bson.M{
		"user_id":       userID.String(),
		itemKey(eventID): bson.M{"$exists": true},
	})
	if err != nil {
		return false, fmt.Errorf("error checking favourite: %w", err)
	}
	return n > 0, nil
}

func sortedFavouriteIDs(items map[string]FavouriteItem) []int64 {
	list := make([]FavouriteItem, 0, len(items))
	for _, item := range items {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AddedAt.Equal(list[j].AddedAt) {
			return list[i].EventID > list[j].EventID
		}
		return list[i].AddedAt.After(list[j].AddedAt)
	})
	ids := make([]int64, len(list))
	for i, item := range list {
		ids[i] = item.EventID
	}
	return ids
}
