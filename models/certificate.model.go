package models

import "time"

type Certificate struct {
	ID           uint        `json:"id" gorm:"primarykey"`
	EnrollmentID uint        `json:"enrollmentId" gorm:"index;not null"`
	UserID       uint        `json:"userId" gorm:"index;not null"`
	Title        string      `json:"title" gorm:"not null"`
	Credential   string      `json:"credential" gorm:"type:varchar(32);index;not null"`
	DocumentURL  *string     `json:"documentUrl"`
	IssuedAt     time.Time   `json:"issuedAt" gorm:"not null"`
	ExpiredAt    *time.Time  `json:"expiredAt"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Enrollment   *Enrollment `json:"-" gorm:"foreignKey:EnrollmentID"`
}

// IsActive reports whether the certificate has no expiry or expires after t.
func (c Certificate) IsActive(t time.Time) bool {
	return c.ExpiredAt == nil || c.ExpiredAt.After(t)
}
