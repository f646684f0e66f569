package domain

import (
	"time"
)

const (
	UserTypeCustomer = "customer"
	UserTypeBusiness = "business"
)

// User is an account record. Type discriminates customer accounts from
// business accounts and gates most mutations.
type User struct {
	ID        int64     `json:"id" form:"id"`
	Username  string    `gorm:"uniqueIndex;size:150" json:"username" form:"username"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email" form:"email"`
	Password  string    `json:"-" form:"-"`
	FirstName string    `gorm:"size:150" json:"first_name" form:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name" form:"last_name"`
	Type      string    `gorm:"size:20;index" json:"type" form:"type"`
	IsStaff   bool      `json:"is_staff"`
	IsActive  bool      `json:"is_active"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "sys_user"
}

// IsBusiness reports whether the account is a business account
func (u *User) IsBusiness() bool {
	return u.Type == UserTypeBusiness
}

// IsCustomer reports whether the account is a customer account
func (u *User) IsCustomer() bool {
	return u.Type == UserTypeCustomer
}

// ValidUserType checks the type discriminator
func ValidUserType(t string) bool {
	return t == UserTypeCustomer || t == UserTypeBusiness
}
