package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
)

const collectionActivities = "activities"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *mongo.Database) ports.ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivities)}
}

// Insert appends an activity to the audit collection.
func (r *ActivityRepository) Insert(ctx context.Context, activity *domain.Activity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"user_id":      activity.UserID,
		"action":       string(activity.Action),
		"occurred_at":  activity.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if activity.ResourceID != "" {
		doc["resource_id"] = activity.ResourceID
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// EnsureIndexes indexes activities per user in time order.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	return err
}
