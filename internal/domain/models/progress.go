package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Progress records which steps of one roadmap a user has completed.
// There is at most one document per (User, RoadmapID).
//
// CompletedSteps holds indices into Roadmap.Steps as they were ordered when
// the progress was written; they are not remapped if steps are later edited.
type Progress struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User           string             `bson:"user" json:"user"` // subject id
	RoadmapID      primitive.ObjectID `bson:"roadmap_id" json:"roadmap"`
	CompletedSteps []int              `bson:"completed_steps" json:"completedSteps"`
	CompletedAt    *time.Time         `bson:"completed_at,omitempty" json:"completedAt"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
