package entity

import "time"

type User struct {
	Id             string    `bson:"_id" json:"id"`
	Username       string    `bson:"username" json:"username"`
	Email          string    `bson:"email" json:"email"`
	Password       string    `bson:"password" json:"-"` // Don't expose password in JSON
	ProfilePicture string    `bson:"profilePicture" json:"profilePicture"`
	IsOnline       bool      `bson:"isOnline" json:"isOnline"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserPublic is the identity shape embedded in message payloads.
type UserPublic struct {
	Id             string `bson:"_id" json:"id"`
	Username       string `bson:"username" json:"username"`
	ProfilePicture string `bson:"profilePicture" json:"profilePicture"`
}

func (u User) Public() UserPublic {
	return UserPublic{
		Id:             u.Id,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}

type UserIndexFilter struct {
	Ids []string `bson:"ids"`
}
