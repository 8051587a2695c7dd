package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NutritionRecord is a saved nutrition analysis. At least one of Description
// or a source image must have been present when it was created; HasImage
// records whether a meal photo was part of the request. Immutable after
// creation.
type NutritionRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AppID       string             `bson:"app_id" json:"-"`
	UserID      string             `bson:"user_id" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Analysis    string             `bson:"analysis" json:"analysis"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	HasImage    bool               `bson:"has_image" json:"has_image"`
	PhotoURL    string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
}

// RecordTime implements the live-feed ordering key.
func (r NutritionRecord) RecordTime() time.Time { return r.Timestamp }
