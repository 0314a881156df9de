package models

import (
	"errors"
	"time"
)

const MinimumAge = 15

var ErrUnderage = errors.New("user must be at least 15 years old")

type User struct {
	BaseModel

	Username        string `gorm:"uniqueIndex;not null"`
	Email           string `gorm:"not null"`
	PasswordHash    string `gorm:"not null"`
	BirthDate       *time.Time
	CanBeContacted  bool `gorm:"default:false"`
	CanDataBeShared bool `gorm:"default:false"`

	// Relationships
	AuthoredProjects []Project     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Contributions    []Contributor `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AuthoredIssues   []Issue       `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedIssues   []Issue       `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	AuthoredComments []Comment     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// ValidateAge checks the minimum-age rule against the current date. It runs on
// every save that carries a birth date, not only registration, since the age is
// derived rather than stored.
func ValidateAge(birthDate time.Time, now time.Time) error {
	age := now.Year() - birthDate.Year()

	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}

	if age < MinimumAge {
		return ErrUnderage
	}

	return nil
}
