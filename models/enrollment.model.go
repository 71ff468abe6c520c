package models

import "time"

type EnrollmentStatus string

const (
	EnrollmentUnpaid     EnrollmentStatus = "Unpaid"
	EnrollmentInProgress EnrollmentStatus = "In Progress"
	EnrollmentCompleted  EnrollmentStatus = "Completed"
	EnrollmentExpired    EnrollmentStatus = "Expired"
)

type Enrollment struct {
	Model
	UserID             uint              `json:"userId" gorm:"index;not null"`
	ProgramID          uint              `json:"programId" gorm:"index;not null"`
	Status             EnrollmentStatus  `json:"status" gorm:"type:varchar(20);index;not null"`
	ProgressPercentage Percentage        `json:"progressPercentage" gorm:"type:numeric(5,2);not null;default:0"`
	CompletedAt        *time.Time        `json:"completedAt"`
	User               *User             `json:"-" gorm:"foreignKey:UserID"`
	Program            *Program          `json:"-" gorm:"foreignKey:ProgramID"`
	Invoice            *Invoice          `json:"-" gorm:"foreignKey:EnrollmentID"`
	CompletedModules   []CompletedModule `json:"-" gorm:"foreignKey:EnrollmentID"`
}

// CompletedModule is append-only; the pair (EnrollmentID, CourseModuleID)
// can be recorded once.
type CompletedModule struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	EnrollmentID   uint      `json:"enrollmentId" gorm:"not null;uniqueIndex:idx_completed_module"`
	CourseModuleID uint      `json:"courseModuleId" gorm:"not null;uniqueIndex:idx_completed_module"`
	CompletedAt    time.Time `json:"completedAt" gorm:"not null"`
}
