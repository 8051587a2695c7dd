package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Senjuv/healt-tracker/internal/feed"
	"github.com/Senjuv/healt-tracker/internal/models"
)

// RecordsService owns the per-user health record collections in MongoDB.
// Every write is an insert of a new, timestamp-carrying document scoped by
// (app_id, user_id); nothing is ever updated or deleted, so no transaction
// discipline is needed. Each insert also announces the change on the user's
// feed channel.
type RecordsService struct {
	db    *mongo.Database
	redis *redis.Client
	appID string
}

func NewRecordsService(db *mongo.Database, rdb *redis.Client, appID string) *RecordsService {
	return &RecordsService{db: db, redis: rdb, appID: appID}
}

// EnsureIndexes configures indexes for the record collections. Called on
// startup from main after Mongo has connected.
func (s *RecordsService) EnsureIndexes(ctx context.Context) error {
	for _, collection := range []string{models.WeightsCollection, models.NutritionCollection, models.SkinCollection} {
		col := s.db.Collection(collection)
		_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{
				{Key: "app_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_user_timestamp"),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *RecordsService) scope(userID string) bson.M {
	return bson.M{"app_id": s.appID, "user_id": userID}
}

// announce publishes the change notification; best effort, a lost wake-up
// only delays the next snapshot.
func (s *RecordsService) announce(ctx context.Context, userID, collection string) {
	if err := feed.Publish(ctx, s.redis, userID, collection); err != nil {
		log.Printf("records: feed publish failed for %s/%s: %v", userID, collection, err)
	}
}

// InsertWeight persists a new measurement taken now.
func (s *RecordsService) InsertWeight(ctx context.Context, userID string, weight float64) (*models.WeightEntry, error) {
	now := time.Now().UTC()
	entry := models.WeightEntry{
		ID:        models.WeightEntryKey(userID, now),
		AppID:     s.appID,
		UserID:    userID,
		Weight:    weight,
		Timestamp: now,
		DateLabel: now.Format("02/01/2006"),
	}

	if _, err := s.db.Collection(models.WeightsCollection).InsertOne(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert weight entry: %w", err)
	}
	s.announce(ctx, userID, models.WeightsCollection)
	return &entry, nil
}

// ListWeights returns the user's full weight history, oldest first.
func (s *RecordsService) ListWeights(ctx context.Context, userID string) ([]models.WeightEntry, error) {
	findOptions := options.Find().SetSort(bson.M{"timestamp": 1})
	cursor, err := s.db.Collection(models.WeightsCollection).Find(ctx, s.scope(userID), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.WeightEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// InsertNutrition persists a saved nutrition analysis.
func (s *RecordsService) InsertNutrition(ctx context.Context, userID string, record models.NutritionRecord) (*models.NutritionRecord, error) {
	record.AppID = s.appID
	record.UserID = userID
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	res, err := s.db.Collection(models.NutritionCollection).InsertOne(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("insert nutrition record: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}
	s.announce(ctx, userID, models.NutritionCollection)
	return &record, nil
}

// ListNutrition returns saved nutrition analyses, newest first, paginated.
func (s *RecordsService) ListNutrition(ctx context.Context, userID string, limit, skip int64) ([]models.NutritionRecord, int64, error) {
	col := s.db.Collection(models.NutritionCollection)
	filter := s.scope(userID)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetLimit(limit).
		SetSkip(skip)

	cursor, err := col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var records []models.NutritionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// InsertSkin persists a saved skincare analysis.
func (s *RecordsService) InsertSkin(ctx context.Context, userID string, entry models.SkinJournalEntry) (*models.SkinJournalEntry, error) {
	entry.AppID = s.appID
	entry.UserID = userID
	entry.HasImage = true
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	res, err := s.db.Collection(models.SkinCollection).InsertOne(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("insert skin journal entry: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}
	s.announce(ctx, userID, models.SkinCollection)
	return &entry, nil
}

// ListSkin returns saved skincare analyses, newest first, paginated.
func (s *RecordsService) ListSkin(ctx context.Context, userID string, limit, skip int64) ([]models.SkinJournalEntry, int64, error) {
	col := s.db.Collection(models.SkinCollection)
	filter := s.scope(userID)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetLimit(limit).
		SetSkip(skip)

	cursor, err := col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var entries []models.SkinJournalEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// LoadSnapshot returns the full current record set for one collection as
// feed records. It is the feed.SnapshotLoader behind the live subscription;
// server-side order doesn't matter, the projection sorts.
func (s *RecordsService) LoadSnapshot(ctx context.Context, userID, collection string) ([]feed.Record, error) {
	switch collection {
	case models.WeightsCollection:
		entries, err := s.ListWeights(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := make([]feed.Record, len(entries))
		for i, e := range entries {
			out[i] = e
		}
		return out, nil
	case models.NutritionCollection:
		records, _, err := s.ListNutrition(ctx, userID, 0, 0)
		if err != nil {
			return nil, err
		}
		out := make([]feed.Record, len(records))
		for i, r := range records {
			out[i] = r
		}
		return out, nil
	case models.SkinCollection:
		entries, _, err := s.ListSkin(ctx, userID, 0, 0)
		if err != nil {
			return nil, err
		}
		out := make([]feed.Record, len(entries))
		for i, e := range entries {
			out[i] = e
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown collection %q", collection)
}
