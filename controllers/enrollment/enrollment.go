package enrollmentController

import (
	"elearning/middleware"
	"elearning/models"
	"elearning/services"
	"elearning/validators"
	enrollmentValidator "elearning/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	enrollments *services.EnrollmentService
}

func New(enrollments *services.EnrollmentService) *Controller {
	return &Controller{enrollments: enrollments}
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[enrollmentValidator.CreateEnrollmentRequest](c, enrollmentValidator.CreateEnrollmentKey)
	if err != nil {
		return err
	}

	created, err := ctl.enrollments.Create(c.UserContext(), middleware.ActorFrom(c), reqData.ProgramID, reqData.UserID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", created)
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	q, err := validators.FromLocals[enrollmentValidator.EnrollmentListQuery](c, enrollmentValidator.EnrollmentListKey)
	if err != nil {
		return err
	}

	enrollments, pagination, err := ctl.enrollments.GetMany(c.UserContext(), middleware.ActorFrom(c), services.EnrollmentFilter{
		PageQuery:   q.PageQuery,
		UserID:      q.UserID,
		ProgramID:   q.ProgramID,
		Status:      models.EnrollmentStatus(q.Status),
		ProgramType: models.ProgramType(q.ProgramType),
		Created:     q.Created(),
	})
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Enrollments fetched successfully!", enrollments, pagination)
}

func (ctl *Controller) GetOne(c *fiber.Ctx) error {
	enrollment, err := ctl.enrollments.GetOne(c.UserContext(), middleware.ActorFrom(c), validators.Param(c, enrollmentValidator.EnrollmentIDParam))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched successfully!", enrollment)
}

// Update marks a non-course enrollment as completed and issues its certificate.
func (ctl *Controller) Update(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[enrollmentValidator.UpdateEnrollmentRequest](c, enrollmentValidator.UpdateEnrollmentKey)
	if err != nil {
		return err
	}

	enrollment, err := ctl.enrollments.UpdateOne(c.UserContext(), middleware.ActorFrom(c),
		validators.Param(c, enrollmentValidator.EnrollmentIDParam), models.EnrollmentStatus(reqData.Status))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment updated successfully!", enrollment)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	id := validators.Param(c, enrollmentValidator.EnrollmentIDParam)
	if err := ctl.enrollments.DeleteOne(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment deleted successfully!", fiber.Map{"id": id})
}

func (ctl *Controller) CompleteModule(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[enrollmentValidator.CompleteModuleRequest](c, enrollmentValidator.CompleteModuleKey)
	if err != nil {
		return err
	}

	completion, err := ctl.enrollments.CompleteModule(c.UserContext(), middleware.ActorFrom(c),
		validators.Param(c, enrollmentValidator.EnrollmentIDParam), reqData.CourseModuleID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module marked as completed!", completion)
}
