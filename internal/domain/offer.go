package domain

import "time"

const (
	OfferTypeBasic    = "basic"
	OfferTypeStandard = "standard"
	OfferTypePremium  = "premium"
)

// OfferTypes lists the detail tiers every offer must carry exactly once.
var OfferTypes = []string{OfferTypeBasic, OfferTypeStandard, OfferTypePremium}

// Offer is a sellable listing published by a business user. The three
// pricing tiers live in OfferDetail rows.
type Offer struct {
	ID          int64     `json:"id" form:"id"`
	Title       string    `gorm:"size:255;index" json:"title" form:"title"`
	Image       string    `gorm:"size:1024" json:"image" form:"image"`
	Description string    `json:"description" form:"description"`
	CreatorID   int64     `gorm:"index" json:"creator_id" form:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Creator *User         `gorm:"foreignKey:CreatorID" json:"-"`
	Details []OfferDetail `gorm:"foreignKey:OfferID" json:"details,omitempty"`
}

func (Offer) TableName() string {
	return "offers"
}

// OfferDetail is one pricing tier of an offer, unique per (offer, offer_type).
type OfferDetail struct {
	ID                 int64     `json:"id"`
	OfferID            int64     `gorm:"uniqueIndex:uk_offer_detail_type" json:"offer_id"`
	Title              string    `gorm:"size:255" json:"title"`
	Revisions          int       `json:"revisions"`
	DeliveryTimeInDays int       `json:"delivery_time_in_days"`
	Price              float64   `json:"price"`
	Features           []string  `gorm:"serializer:json" json:"features"`
	OfferType          string    `gorm:"size:50;uniqueIndex:uk_offer_detail_type" json:"offer_type"`
	CreatedAt          time.Time `json:"-"`
	UpdatedAt          time.Time `json:"-"`
}

func (OfferDetail) TableName() string {
	return "offer_details"
}

// ValidOfferType checks a tier discriminator
func ValidOfferType(t string) bool {
	for _, v := range OfferTypes {
		if v == t {
			return true
		}
	}
	return false
}
