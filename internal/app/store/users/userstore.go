package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/normalize"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateSubject is returned when a user with the subject already exists.
	ErrDuplicateSubject = errors.New("a user with this subject already exists")
	// ErrDuplicateEmail is returned when the email is already used by another user.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	errBadRole   = errors.New(`role must be "learner"|"editor"|"admin"`)
	errNoSubject = errors.New("subject is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetBySubject loads a user by identity-provider subject id.
func (s *Store) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"subject": subject})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Subject = strings.TrimSpace(u.Subject)
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = authz.DefaultRole
	}

	if u.Subject == "" {
		return models.User{}, errNoSubject
	}
	if !authz.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.LastLoginAt = &now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupError(err)
		}
		return models.User{}, err
	}
	return u, nil
}

// dupError tells apart the two unique indexes on users.
func dupError(err error) error {
	if strings.Contains(err.Error(), "uniq_users_email") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateSubject
}

// EnsureUser returns the user for u.Subject, creating it when absent.
// created reports whether this call inserted the document. A concurrent
// insert for the same subject is not an error; the stored record is returned.
// If the insert collides on email with a different subject, ErrDuplicateEmail
// is returned.
func (s *Store) EnsureUser(ctx context.Context, u models.User) (user *models.User, created bool, err error) {
	existing, err := s.GetBySubject(ctx, u.Subject)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	inserted, err := s.Create(ctx, u)
	if err == nil {
		return &inserted, true, nil
	}
	if !errors.Is(err, ErrDuplicateSubject) && !errors.Is(err, ErrDuplicateEmail) {
		return nil, false, err
	}

	// Lost a race, or the email belongs to someone else.
	existing, findErr := s.GetBySubject(ctx, u.Subject)
	if findErr == nil {
		return existing, false, nil
	}
	if errors.Is(findErr, ErrNotFound) {
		return nil, false, ErrDuplicateEmail
	}
	return nil, false, findErr
}

// UpdateProfile sets name and email for the user with the given subject and
// returns the updated record.
func (s *Store) UpdateProfile(ctx context.Context, subject, name, email string) (*models.User, error) {
	name = normalize.Name(name)
	set := bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	// An empty email is unset so the partial unique index ignores it.
	if e := normalize.Email(email); e != "" {
		set["email"] = e
	} else {
		update["$unset"] = bson.M{"email": ""}
	}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"subject": subject},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin records a sign-in for the user with the given subject.
func (s *Store) TouchLastLogin(ctx context.Context, subject string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"subject": subject},
		bson.M{"$set": bson.M{"last_login_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
