package models

import "time"

type Role string

const (
	RolePhotographer Role = "photographer"
	RoleHirer        Role = "hirer"
)

func (r Role) Valid() bool {
	switch r {
	case RolePhotographer, RoleHirer:
		return true
	}
	return false
}

// User is owned by the profile service; messaging only reads it.
type User struct {
	Model
	FirstName      string     `gorm:"size:50;not null" json:"firstName"`
	LastName       string     `gorm:"size:50;not null" json:"lastName"`
	Email          string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	HashedPassword string     `gorm:"column:password;size:255;not null" json:"-"`
	Role           Role       `gorm:"type:varchar(20);not null;index" json:"role"`
	ProfilePhoto   *string    `gorm:"size:255" json:"profilePhoto"`
	Bio            *string    `gorm:"type:text" json:"bio,omitempty"`
	Location       *string    `gorm:"size:100" json:"location,omitempty"`
	IsActive       bool       `gorm:"not null;default:true" json:"isActive"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

// UserSummary holds the display attributes other users may see.
type UserSummary struct {
	ID           uint    `json:"id"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	ProfilePhoto *string `json:"profilePhoto"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfilePhoto: u.ProfilePhoto,
	}
}
