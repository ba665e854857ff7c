package model

import (
	"time"
)

const Collection = "user"

// User is the account master record. Password holds the bcrypt hash and is
// excluded from every JSON response.
type User struct {
	ID         string    `bson:"_id" json:"id"`
	FullName   string    `bson:"full_name" json:"fullName"`
	Email      string    `bson:"email" json:"email"`
	Password   string    `bson:"password" json:"-"`
	ProfilePic string    `bson:"profile_pic" json:"profilePic"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// Contact is the projection of a user shown in contact lists and attached to
// messages.
type Contact struct {
	ID         string `bson:"_id" json:"id"`
	FullName   string `bson:"full_name" json:"fullName"`
	ProfilePic string `bson:"profile_pic" json:"profilePic"`
}

func (u *User) Contact() Contact {
	return Contact{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}
