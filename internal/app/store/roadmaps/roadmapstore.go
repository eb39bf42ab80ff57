// internal/app/store/roadmaps/roadmapstore.go
package roadmapstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/roadmaphub/internal/app/system/paging"
	"github.com/dalemusser/roadmaphub/internal/app/system/status"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no roadmap matches (including archived
	// roadmaps read through a scoped method).
	ErrNotFound = errors.New("roadmap not found")

	errNoTitle   = errors.New("title is required")
	errNoSteps   = errors.New("at least one step is required")
	errBadStatus = errors.New(`status must be "active"|"archived"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("roadmaps")}
}

// scoped restricts a filter to active roadmaps. Every read that is not
// explicitly Unscoped goes through here.
func scoped(filter bson.M) bson.M {
	filter["status"] = status.Active
	return filter
}

// Create inserts a new roadmap, setting folded fields, defaults and timestamps.
func (s *Store) Create(ctx context.Context, r models.Roadmap) (models.Roadmap, error) {
	if strings.TrimSpace(r.Title) == "" {
		return models.Roadmap{}, errNoTitle
	}
	if len(r.Steps) == 0 {
		return models.Roadmap{}, errNoSteps
	}

	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.TitleCI = text.Fold(r.Title)
	r.CategoryCI = text.Fold(r.Category)
	if r.Visibility != models.VisibilityPrivate {
		r.Visibility = models.VisibilityPublic
	}
	r.Tags, r.Steps = fillLists(r.Tags, r.Steps)
	r.Status = status.Active
	r.ArchivedAt = nil
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Roadmap{}, err
	}
	return r, nil
}

// fillLists stores empty arrays instead of nulls so tags and step resources
// always read back (and serialize) as lists.
func fillLists(tags []string, steps []models.Step) ([]string, []models.Step) {
	if tags == nil {
		tags = []string{}
	}
	out := make([]models.Step, len(steps))
	for i, st := range steps {
		if st.Resources == nil {
			st.Resources = []string{}
		}
		out[i] = st
	}
	return tags, out
}

// Update carries the mutable fields of a roadmap. It is applied as a full
// replacement of those fields; status and creator are never touched.
type Update struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Steps       []models.Step
	Visibility  string
}

// Replace overwrites the mutable fields of the roadmap with the given id and
// returns the updated document. Archived roadmaps can be replaced too.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, upd Update) (models.Roadmap, error) {
	if strings.TrimSpace(upd.Title) == "" {
		return models.Roadmap{}, errNoTitle
	}
	if len(upd.Steps) == 0 {
		return models.Roadmap{}, errNoSteps
	}
	if upd.Visibility != models.VisibilityPrivate {
		upd.Visibility = models.VisibilityPublic
	}
	upd.Tags, upd.Steps = fillLists(upd.Tags, upd.Steps)

	set := bson.M{
		"title":       upd.Title,
		"title_ci":    text.Fold(upd.Title),
		"description": upd.Description,
		"category":    upd.Category,
		"category_ci": text.Fold(upd.Category),
		"tags":        upd.Tags,
		"steps":       upd.Steps,
		"visibility":  upd.Visibility,
		"updated_at":  time.Now().UTC(),
	}

	var out models.Roadmap
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Roadmap{}, ErrNotFound
		}
		return models.Roadmap{}, err
	}
	return out, nil
}

// SetStatus archives or restores a roadmap and returns the result. Setting
// the status a roadmap already has is a no-op that leaves archived_at alone.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, st string) (models.Roadmap, error) {
	if !status.IsValid(st) {
		return models.Roadmap{}, errBadStatus
	}

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"status": st, "updated_at": now}}
	if st == status.Archived {
		update["$set"].(bson.M)["archived_at"] = now
	} else {
		update["$unset"] = bson.M{"archived_at": ""}
	}

	var out models.Roadmap
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": st}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s.GetByIDUnscoped(ctx, id)
	}
	if err != nil {
		return models.Roadmap{}, err
	}
	return out, nil
}

// GetByID returns an active roadmap by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Roadmap, error) {
	return s.findOne(ctx, scoped(bson.M{"_id": id}))
}

// GetByIDUnscoped returns a roadmap by id regardless of status.
func (s *Store) GetByIDUnscoped(ctx context.Context, id primitive.ObjectID) (models.Roadmap, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Roadmap, error) {
	var r models.Roadmap
	if err := s.c.FindOne(ctx, filter).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Roadmap{}, ErrNotFound
		}
		return models.Roadmap{}, err
	}
	return r, nil
}

// GetManyUnscoped returns the roadmaps with the given ids keyed by id,
// regardless of status. Missing ids are simply absent from the map.
func (s *Store) GetManyUnscoped(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Roadmap, error) {
	out := make(map[primitive.ObjectID]models.Roadmap, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var r models.Roadmap
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out[r.ID] = r
	}
	return out, cur.Err()
}

// ListQuery selects roadmaps for the list, search, category and "mine" views.
type ListQuery struct {
	// Viewer widens the default public set with the viewer's own private
	// roadmaps. Empty means anonymous.
	Viewer string
	// CreatedBy restricts results to one creator, any visibility.
	CreatedBy string
	// IncludeArchived is only honored together with CreatedBy.
	IncludeArchived bool

	Category string // case-insensitive substring
	Search   string // case-insensitive substring over title, description, category, tags
	Tag      string // case-insensitive exact tag

	Page paging.KeysetConfig
}

// Filter builds the MongoDB filter for q, without the keyset window.
func (q ListQuery) Filter() bson.M {
	var and []bson.M

	switch {
	case q.CreatedBy != "":
		and = append(and, bson.M{"created_by": q.CreatedBy})
	case q.Viewer != "":
		and = append(and, bson.M{"$or": []bson.M{
			{"visibility": models.VisibilityPublic},
			{"created_by": q.Viewer},
		}})
	default:
		and = append(and, bson.M{"visibility": models.VisibilityPublic})
	}

	if c := strings.TrimSpace(q.Category); c != "" {
		and = append(and, bson.M{"category": contains(c)})
	}
	if tag := strings.TrimSpace(q.Tag); tag != "" {
		and = append(and, bson.M{"tags": bson.M{"$regex": "^" + regexp.QuoteMeta(tag) + "$", "$options": "i"}})
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		rx := contains(term)
		and = append(and, bson.M{"$or": []bson.M{
			{"title": rx},
			{"description": rx},
			{"category": rx},
			{"tags": rx},
		}})
	}

	filter := bson.M{"$and": and}
	if q.CreatedBy != "" && q.IncludeArchived {
		return filter
	}
	return scoped(filter)
}

func contains(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// List returns one page of roadmaps ordered by (title_ci, _id). Up to
// q.Page.Limit+1 rows are returned; pass them to paging.Finish.
func (s *Store) List(ctx context.Context, q ListQuery) ([]models.Roadmap, error) {
	if q.Page.Limit <= 0 {
		q.Page.Limit = paging.PageSize
	}
	if q.Page.SortOrder == 0 {
		q.Page.SortOrder = 1
	}

	filter := q.Filter()
	if win := q.Page.KeysetWindow("title_ci"); win != nil {
		filter["$and"] = append(filter["$and"].([]bson.M), win)
	}

	find := options.Find()
	q.Page.ApplyToFind(find, "title_ci")

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Roadmap{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of roadmaps in any status.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
