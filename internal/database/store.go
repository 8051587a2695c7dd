package database

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store bundles the three backing stores. It is constructed once in main and
// passed explicitly to every service and handler that needs data access;
// nothing in this package keeps package-level handles.
type Store struct {
	Mongo       *mongo.Database
	MongoClient *mongo.Client
	Postgres    *sql.DB
	Redis       *redis.Client
}

// Close releases every underlying connection. Safe to call on a partially
// connected Store.
func (s *Store) Close() {
	if s.MongoClient != nil {
		disconnectMongo(s.MongoClient)
	}
	if s.Postgres != nil {
		s.Postgres.Close()
	}
	if s.Redis != nil {
		s.Redis.Close()
	}
}
