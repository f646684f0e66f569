package domain

import "time"

const (
	ReviewRatingMin = 1
	ReviewRatingMax = 10
)

// Review is a customer's rating of a business user, one per
// (reviewer, business_user) pair.
type Review struct {
	ID             int64     `json:"id"`
	BusinessUserID int64     `gorm:"uniqueIndex:uk_review_pair" json:"business_user"`
	ReviewerID     int64     `gorm:"uniqueIndex:uk_review_pair" json:"reviewer"`
	Rating         int       `gorm:"check:rating >= 1 AND rating <= 10" json:"rating"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// ValidRating checks the 1..10 rating bounds
func ValidRating(r int) bool {
	return r >= ReviewRatingMin && r <= ReviewRatingMax
}
