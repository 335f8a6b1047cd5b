package schemas

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	USERS_ROLE_ADMIN   = "admin"
	USERS_ROLE_MANAGER = "manager"
	USERS_ROLE_SALES   = "sales"
	USERS_ROLE_STAFF   = "staff"
)

var UserRoles = []string{USERS_ROLE_ADMIN, USERS_ROLE_MANAGER, USERS_ROLE_SALES, USERS_ROLE_STAFF}

func IsValidRole(role string) bool {
	return slices.Contains(UserRoles, role)
}

type User struct {
	ID         bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Username   string        `json:"username" bson:"username"`
	Email      string        `json:"email" bson:"email"`
	Password   string        `json:"-" bson:"password"`
	Role       string        `json:"role" bson:"role"`
	IsApproved bool          `json:"isApproved" bson:"is_approved"`
	IsActive   bool          `json:"isActive" bson:"is_active"`
	CreatedAt  time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time     `json:"updatedAt" bson:"updated_at"`
}

// UserRef is the public projection of a user embedded in other records.
type UserRef struct {
	ID       bson.ObjectID `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email,omitempty"`
}

func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username, Email: u.Email}
}

// PublicRef is Ref without the email, for records fanned out to other users.
func (u *User) PublicRef() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username}
}

// UserUpdate carries the admin-editable flags; nil fields are left alone.
type UserUpdate struct {
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=admin manager sales staff"`
	IsApproved *bool   `json:"isApproved,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
}

func (u UserUpdate) IsEmpty() bool {
	return u.Role == nil && u.IsApproved == nil && u.IsActive == nil
}
