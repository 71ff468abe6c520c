package certificateController

import (
	"elearning/middleware"
	"elearning/services"
	"elearning/validators"
	certificateValidator "elearning/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	certificates *services.CertificateService
}

func New(certificates *services.CertificateService) *Controller {
	return &Controller{certificates: certificates}
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[certificateValidator.CreateCertificateRequest](c, certificateValidator.CreateCertificateKey)
	if err != nil {
		return err
	}

	certificate, err := ctl.certificates.Create(c.UserContext(), services.CertificateInput{
		EnrollmentID: reqData.EnrollmentID,
		IssuedAt:     reqData.IssuedAt,
		ExpiredAt:    reqData.ExpiredAt,
		Title:        reqData.Title,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", certificate)
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	q, err := validators.FromLocals[certificateValidator.CertificateListQuery](c, certificateValidator.CertificateListKey)
	if err != nil {
		return err
	}

	certificates, pagination, err := ctl.certificates.GetMany(c.UserContext(), middleware.ActorFrom(c), services.CertificateFilter{
		PageQuery:    q.PageQuery,
		UserID:       q.UserID,
		EnrollmentID: q.EnrollmentID,
		Credential:   q.Credential,
	})
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Certificates fetched successfully!", certificates, pagination)
}

func (ctl *Controller) GetOne(c *fiber.Ctx) error {
	certificate, err := ctl.certificates.GetOne(c.UserContext(), middleware.ActorFrom(c), validators.Param(c, certificateValidator.CertificateIDParam))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", certificate)
}

func (ctl *Controller) Update(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[certificateValidator.UpdateCertificateRequest](c, certificateValidator.UpdateCertificateKey)
	if err != nil {
		return err
	}

	certificate, err := ctl.certificates.UpdateOne(c.UserContext(), validators.Param(c, certificateValidator.CertificateIDParam), services.CertificateUpdate{
		Title:     reqData.Title,
		IssuedAt:  reqData.IssuedAt,
		ExpiredAt: reqData.ExpiredAt,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate updated successfully!", certificate)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	id := validators.Param(c, certificateValidator.CertificateIDParam)
	if err := ctl.certificates.DeleteOne(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate deleted successfully!", fiber.Map{"id": id})
}
