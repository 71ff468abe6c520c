package models

import "time"

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

type User struct {
	Model
	FullName  string  `json:"fullName" gorm:"not null"`
	Email     string  `json:"email" gorm:"uniqueIndex;not null"`
	Password  string  `json:"-" gorm:"not null"`
	Role      Role    `json:"role" gorm:"type:varchar(10);not null;default:'User'"`
	AvatarURL *string `json:"avatarUrl"`
}

// RevokedToken keeps the jti of a logged-out access token until it would
// have expired on its own.
type RevokedToken struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	JTI       string    `json:"jti" gorm:"column:jti;type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
