package feed

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record changes are announced over Redis Pub/Sub: every insert publishes on
// the user's collection channel and each live subscriber re-queries the full
// set. The store delivers full-state snapshots, not deltas, so subscribers
// never have to merge.

// ChannelFor returns the Pub/Sub channel for one user's collection.
func ChannelFor(userID, collection string) string {
	return "feed:" + userID + ":" + collection
}

// Publish announces that a user's collection changed. The payload is only a
// wake-up; subscribers reload the snapshot themselves.
func Publish(ctx context.Context, rdb *redis.Client, userID, collection string) error {
	return rdb.Publish(ctx, ChannelFor(userID, collection), collection).Err()
}

// SnapshotLoader loads the full current record set for one user's collection.
type SnapshotLoader func(ctx context.Context, userID, collection string) ([]Record, error)

// Event is one snapshot-replace delivery pushed to a consumer.
type Event struct {
	Type       string   `json:"type"` // always "snapshot"
	Collection string   `json:"collection"`
	Records    []Record `json:"records"`
	Error      string   `json:"error,omitempty"`
}

// Subscriber drives the projection for a single consumer (one WebSocket
// connection). It owns the Redis subscription lifecycle: the caller only
// establishes it once the store handle, a resolved user identity and a
// validated live session all hold, and cancels the context to tear it down.
type Subscriber struct {
	Redis *redis.Client
	Load  SnapshotLoader
}

// Run delivers an initial snapshot, then one snapshot per change
// notification, until ctx is cancelled. A failing load substitutes an empty
// set and surfaces the error on the event; the subscription stays alive so a
// healed store resumes deliveries. push errors (dead consumer) end the loop.
func (s *Subscriber) Run(ctx context.Context, userID, collection string, push func(Event) error) {
	proj := &Projection{}
	pubsub := s.Redis.Subscribe(ctx, ChannelFor(userID, collection))
	defer pubsub.Close()

	if err := s.deliver(ctx, proj, userID, collection, push); err != nil {
		return
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := s.deliver(ctx, proj, userID, collection, push); err != nil {
				return
			}
		}
	}
}

func (s *Subscriber) deliver(ctx context.Context, proj *Projection, userID, collection string, push func(Event) error) error {
	loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	records, err := s.Load(loadCtx, userID, collection)
	cancel()

	event := Event{Type: "snapshot", Collection: collection}
	if err != nil {
		log.Printf("feed: snapshot load failed for %s/%s: %v", userID, collection, err)
		proj.Fail(err)
		event.Error = "No se pudieron cargar los registros."
		event.Records = []Record{}
	} else {
		proj.Replace(records)
		// History feeds render newest-first; the client reverses for
		// progress charts.
		event.Records = proj.Descending()
	}
	return push(event)
}
