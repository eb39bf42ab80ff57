// internal/app/store/progress/progressstore.go
package progressstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/roadmaphub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the user has no progress for the roadmap.
var ErrNotFound = errors.New("progress not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("progress")}
}

func key(user string, roadmapID primitive.ObjectID) bson.M {
	return bson.M{"user": user, "roadmap_id": roadmapID}
}

// Upsert replaces the completed step set for (user, roadmapID), creating the
// record on first write. completedAt nil clears any previous completion.
// steps must already be de-duplicated and sorted.
//
// Two concurrent first writes can both miss the unique key and race on the
// insert; the loser gets a duplicate-key error and is retried once, which
// then matches the winner's document and updates it.
func (s *Store) Upsert(ctx context.Context, user string, roadmapID primitive.ObjectID, steps []int, completedAt *time.Time) (models.Progress, error) {
	if steps == nil {
		steps = []int{}
	}
	now := time.Now().UTC()

	set := bson.M{
		"completed_steps": steps,
		"updated_at":      now,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	if completedAt != nil {
		set["completed_at"] = completedAt.UTC()
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var p models.Progress
	err := s.c.FindOneAndUpdate(ctx, key(user, roadmapID), update, opts).Decode(&p)
	if err != nil && wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, key(user, roadmapID), update, opts).Decode(&p)
	}
	if err != nil {
		return models.Progress{}, err
	}
	return p, nil
}

// Get returns the user's progress for one roadmap.
func (s *Store) Get(ctx context.Context, user string, roadmapID primitive.ObjectID) (models.Progress, error) {
	var p models.Progress
	if err := s.c.FindOne(ctx, key(user, roadmapID)).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Progress{}, ErrNotFound
		}
		return models.Progress{}, err
	}
	return p, nil
}

// ListByUser returns all of the user's progress, most recently updated first.
func (s *Store) ListByUser(ctx context.Context, user string) ([]models.Progress, error) {
	find := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.c.Find(ctx, bson.M{"user": user}, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Progress{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the user's progress for one roadmap.
func (s *Store) Delete(ctx context.Context, user string, roadmapID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, key(user, roadmapID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
