package certificateValidator

import (
	"time"

	"elearning/utils"
	"elearning/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	CertificateIDParam = "id"

	CreateCertificateKey = "validatedCertificate"
	UpdateCertificateKey = "validatedCertificateUpdate"
	CertificateListKey   = "validatedCertificateList"
)

type CreateCertificateRequest struct {
	EnrollmentID uint       `json:"enrollmentId" validate:"required"`
	IssuedAt     time.Time  `json:"issuedAt" validate:"required"`
	ExpiredAt    *time.Time `json:"expiredAt"`
	Title        string     `json:"title" validate:"omitempty,max=200"`
}

type UpdateCertificateRequest struct {
	Title     *string    `json:"title" validate:"omitempty,max=200"`
	IssuedAt  *time.Time `json:"issuedAt"`
	ExpiredAt *time.Time `json:"expiredAt"`
}

type CertificateListQuery struct {
	utils.PageQuery
	UserID       uint   `query:"userId"`
	EnrollmentID uint   `query:"enrollmentId"`
	Credential   string `query:"credential" validate:"omitempty,max=64"`
}

func CreateCertificate() fiber.Handler {
	return validators.Body[CreateCertificateRequest](CreateCertificateKey)
}

func UpdateCertificate() fiber.Handler {
	return validators.Body[UpdateCertificateRequest](UpdateCertificateKey)
}

func CertificateList() fiber.Handler {
	return validators.Query[CertificateListQuery](CertificateListKey)
}
