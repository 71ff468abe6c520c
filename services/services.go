package services

import (
	"context"
	"time"

	"elearning/models"
	"elearning/services/pdfrender"
	"elearning/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ObjectStorage stores public files and returns their URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// CertificateRenderer produces the PDF document of a certificate.
type CertificateRenderer interface {
	RenderCertificate(ctx context.Context, data pdfrender.CertificateData) ([]byte, error)
}

// Deps are the collaborators shared by every service.
type Deps struct {
	DB       *gorm.DB
	Log      *zap.SugaredLogger
	Storage  ObjectStorage
	Renderer CertificateRenderer
	Mailer   utils.Mailer
	Now      func() time.Time
}

func (d Deps) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

func (d Deps) logger() *zap.SugaredLogger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop().Sugar()
}

// Actor is the authenticated caller of a service method.
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID uint) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
