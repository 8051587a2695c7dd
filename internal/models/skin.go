package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SkinJournalEntry is a saved skincare analysis. A source image is mandatory,
// so HasImage is always true. Immutable after creation.
type SkinJournalEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AppID     string             `bson:"app_id" json:"-"`
	UserID    string             `bson:"user_id" json:"-"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Analysis  string             `bson:"analysis" json:"analysis"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	HasImage  bool               `bson:"has_image" json:"has_image"`
	PhotoURL  string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
}

// RecordTime implements the live-feed ordering key.
func (e SkinJournalEntry) RecordTime() time.Time { return e.Timestamp }
