package domain

import "time"

// ReservedUsername cannot be registered; it collides with /api/users/me.
const ReservedUsername = "me"

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName    string    `json:"first_name" gorm:"size:150;not null"`
	LastName     string    `json:"last_name" gorm:"size:150;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// UserView is the public user representation; IsSubscribed is relative to the
// requesting user.
type UserView struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func NewUserView(u *User, subscribed bool) UserView {
	return UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}
