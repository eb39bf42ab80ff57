// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an application account keyed by the identity provider's subject id.
//
// NOTE:
//   - Role is fixed at creation. Changing it is an administrative action
//     performed directly against the store, never through the API.
//   - Email is optional (some providers omit it) but unique when present.
type User struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Subject string             `bson:"subject" json:"subject"`
	Email   string             `bson:"email,omitempty" json:"email,omitempty"`
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Role    string             `bson:"role" json:"role"` // learner | editor | admin

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
}
