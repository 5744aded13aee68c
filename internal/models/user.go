package models

import "time"

type User struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PhoneNumber  string  `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone_number"`
	Email        *string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Username     *string `gorm:"type:varchar(50);uniqueIndex" json:"username"`
	Nickname     *string `gorm:"type:varchar(50)" json:"nickname"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`

	// no column defaults here: gorm skips zero-value fields that carry a
	// default tag on insert, which would turn IsActive=false into true
	IsActive  bool `gorm:"not null" json:"is_active"`
	IsDeleted bool `gorm:"not null;index" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
