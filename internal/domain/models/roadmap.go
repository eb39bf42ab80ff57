package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility values for Roadmap.Visibility.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Step is one positionally indexed unit of a roadmap. Steps are embedded in
// their roadmap and have no identity of their own.
type Step struct {
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Resources   []string `bson:"resources" json:"resources"`
}

type Roadmap struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"-"`

	Description string   `bson:"description,omitempty" json:"description"`
	Category    string   `bson:"category" json:"category"`
	CategoryCI  string   `bson:"category_ci" json:"-"`
	Tags        []string `bson:"tags" json:"tags"`
	Steps       []Step   `bson:"steps" json:"steps"`

	CreatedBy     string `bson:"created_by" json:"createdBy"` // creator's subject id
	CreatedByName string `bson:"created_by_name,omitempty" json:"createdByName,omitempty"`

	Visibility string `bson:"visibility" json:"visibility"` // public | private
	Status     string `bson:"status" json:"status"`         // active | archived

	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updatedAt"`
	ArchivedAt *time.Time `bson:"archived_at,omitempty" json:"archivedAt,omitempty"`
}

// IsPublic reports whether anyone may read the roadmap.
func (r Roadmap) IsPublic() bool { return r.Visibility != VisibilityPrivate }
