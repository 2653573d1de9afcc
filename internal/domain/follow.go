package domain

import "time"

// Follow means UserID is subscribed to FollowingID.
type Follow struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_follow_pair"`
	FollowingID int64     `json:"following_id" gorm:"not null;index;uniqueIndex:idx_follow_pair"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	User      *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Following *User `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string { return "follows" }
