package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProgramType string

const (
	ProgramCourse      ProgramType = "Course"
	ProgramSeminar     ProgramType = "Seminar"
	ProgramWorkshop    ProgramType = "Workshop"
	ProgramCompetition ProgramType = "Competition"
)

var ProgramTypes = []ProgramType{ProgramCourse, ProgramSeminar, ProgramWorkshop, ProgramCompetition}

// credentialPrefixes is used for certificates issued through any path.
var credentialPrefixes = map[ProgramType]string{
	ProgramCourse:      "CRS",
	ProgramSeminar:     "SMN",
	ProgramCompetition: "CMP",
	ProgramWorkshop:    "WRS",
}

// manualCompletionPrefixes only covers types that an admin or owner may mark
// as completed by hand. Courses complete through module tracking.
var manualCompletionPrefixes = map[ProgramType]string{
	ProgramSeminar:     "SMN",
	ProgramCompetition: "CMP",
	ProgramWorkshop:    "WRS",
}

func (t ProgramType) Valid() bool {
	_, ok := credentialPrefixes[t]
	return ok
}

func (t ProgramType) CredentialPrefix() (string, bool) {
	prefix, ok := credentialPrefixes[t]
	return prefix, ok
}

func (t ProgramType) ManualCompletionPrefix() (string, bool) {
	prefix, ok := manualCompletionPrefixes[t]
	return prefix, ok
}

type Program struct {
	Model
	Title         string         `json:"title" gorm:"not null"`
	Description   string         `json:"description" gorm:"type:text"`
	ThumbnailURL  *string        `json:"thumbnailUrl"`
	Type          ProgramType    `json:"type" gorm:"type:varchar(20);index;not null"`
	PriceIdr      int64          `json:"priceIdr" gorm:"not null;default:0"`
	AvailableDate time.Time      `json:"availableDate" gorm:"not null"`
	Details       datatypes.JSON `json:"details,omitempty"`
	Modules       []CourseModule `json:"modules,omitempty" gorm:"foreignKey:ProgramID"`
}

func (p Program) IsFree() bool {
	return p.PriceIdr == 0
}

// CourseModule is the unit of progress inside a Course.
type CourseModule struct {
	Model
	ProgramID   uint   `json:"programId" gorm:"index;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	OrderIndex  int    `json:"orderIndex" gorm:"default:0"`
}
