package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. The password field holds a bcrypt hash and
// is never serialised.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name"          json:"name"`
	Email    string             `bson:"email"         json:"email"`
	Password string             `bson:"password"      json:"-"`
}

// PublicUser is the caller-visible projection of a User.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips the credential fields.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}

// UserSummary is the directory-listing projection: name and email only.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary strips everything but the listed fields.
func (u User) Summary() UserSummary {
	return UserSummary{Name: u.Name, Email: u.Email}
}

// RegistrationRequest is one submitted contact/service-request form.
type RegistrationRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name"          json:"name"`
	Phone       string             `bson:"phone"         json:"phone"`
	Email       string             `bson:"email"         json:"email"`
	WebsiteType string             `bson:"website_type"  json:"websiteType"`
	Description string             `bson:"description"   json:"description"`
	CreatedAt   time.Time          `bson:"created_at"    json:"createdAt"`
}
