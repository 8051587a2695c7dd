package models

import "time"

// Collection names for per-user health records.
const (
	WeightsCollection   = "weights"
	NutritionCollection = "nutrition_history"
	SkinCollection      = "skin_journal"
)

// WeightEntry is a single body-weight measurement. The document key is the
// user ID plus the RFC 3339 timestamp, so an entry is uniquely identified
// within a user's collection and concurrent inserts from separate tabs never
// collide (each insert carries a fresh timestamp). Entries are never updated
// or deleted once written.
type WeightEntry struct {
	ID        string    `bson:"_id" json:"id"` // "{userID}/{RFC 3339 timestamp}"
	AppID     string    `bson:"app_id" json:"-"`
	UserID    string    `bson:"user_id" json:"-"`
	Weight    float64   `bson:"weight" json:"weight"` // kilograms, always > 0
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	DateLabel string    `bson:"date_label" json:"date_label"` // locale-formatted, display only
}

// WeightEntryKey returns the identity key for a user's measurement taken at ts.
func WeightEntryKey(userID string, ts time.Time) string {
	return userID + "/" + ts.UTC().Format(time.RFC3339)
}

// RecordTime implements the live-feed ordering key.
func (e WeightEntry) RecordTime() time.Time { return e.Timestamp }
