package domain

import "time"

// UserProfile extends a user account with contact and presentation fields.
// One row per user, created empty at registration.
type UserProfile struct {
	ID           int64     `json:"id"`
	UserID       int64     `gorm:"uniqueIndex" json:"user"`
	Location     string    `gorm:"size:255" json:"location"`
	Tel          string    `gorm:"size:50" json:"tel"`
	Description  string    `json:"description"`
	WorkingHours string    `gorm:"size:100" json:"working_hours"`
	File         string    `gorm:"size:1024" json:"file"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}
