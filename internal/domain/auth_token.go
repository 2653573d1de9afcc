package domain

import "time"

// AuthToken records an issued API token.
//
// Only the SHA-256 hash of the token is stored. Logout deletes the row, which
// revokes the token even though its signature is still valid.
type AuthToken struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	UserID int64 `json:"user_id" gorm:"index;not null"`
	User   User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	TokenHash string `json:"-" gorm:"size:64;uniqueIndex;not null"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

func (AuthToken) TableName() string { return "auth_tokens" }

func (t *AuthToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
