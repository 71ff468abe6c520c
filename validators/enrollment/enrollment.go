package enrollmentValidator

import (
	"time"

	"elearning/utils"
	"elearning/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	EnrollmentIDParam = "id"

	CreateEnrollmentKey = "validatedEnrollment"
	UpdateEnrollmentKey = "validatedEnrollmentUpdate"
	CompleteModuleKey   = "validatedModuleCompletion"
	EnrollmentListKey   = "validatedEnrollmentList"

	dateLayout = "2006-01-02"
)

type CreateEnrollmentRequest struct {
	ProgramID uint `json:"programId" validate:"required"`
	// Only honoured for admins.
	UserID uint `json:"userId"`
}

type UpdateEnrollmentRequest struct {
	Status string `json:"status" validate:"required,enrollment_status"`
}

type CompleteModuleRequest struct {
	CourseModuleID uint `json:"courseModuleId" validate:"required"`
}

type EnrollmentListQuery struct {
	utils.PageQuery
	UserID      uint   `query:"userId"`
	ProgramID   uint   `query:"programId"`
	Status      string `query:"status" validate:"omitempty,enrollment_status"`
	ProgramType string `query:"programType" validate:"omitempty,program_type"`
	CreatedFrom string `query:"createdFrom" validate:"omitempty,datetime=2006-01-02"`
	CreatedTo   string `query:"createdTo" validate:"omitempty,datetime=2006-01-02"`
}

// Created converts the day filters. Both were checked against dateLayout
// already.
func (q EnrollmentListQuery) Created() utils.DateRange {
	var r utils.DateRange
	if t, err := time.Parse(dateLayout, q.CreatedFrom); err == nil {
		r.From = &t
	}
	if t, err := time.Parse(dateLayout, q.CreatedTo); err == nil {
		r.To = &t
	}
	return r
}

func CreateEnrollment() fiber.Handler {
	return validators.Body[CreateEnrollmentRequest](CreateEnrollmentKey)
}

func UpdateEnrollment() fiber.Handler {
	return validators.Body[UpdateEnrollmentRequest](UpdateEnrollmentKey)
}

func CompleteModule() fiber.Handler {
	return validators.Body[CompleteModuleRequest](CompleteModuleKey)
}

func EnrollmentList() fiber.Handler {
	return validators.Query[EnrollmentListQuery](EnrollmentListKey)
}
