package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"elearning/apperr"
	"elearning/models"
	"elearning/services/pdfrender"
	"elearning/utils"

	"go.uber.org/zap"
)

const certificateKeyPrefix = "documents/certificates/"

type storedDocument struct {
	Key string
	URL string
}

// certificateIssuer renders and uploads certificate documents. The database
// row is written by the caller once the document is stored.
type certificateIssuer struct {
	storage  ObjectStorage
	renderer CertificateRenderer
	mailer   utils.Mailer
	log      *zap.SugaredLogger
	now      func() time.Time
}

func newCertificateIssuer(d Deps) *certificateIssuer {
	return &certificateIssuer{
		storage:  d.Storage,
		renderer: d.Renderer,
		mailer:   d.Mailer,
		log:      d.logger(),
		now:      d.clock(),
	}
}

func certificateKey(credential string, at time.Time) string {
	return fmt.Sprintf("%s%s-%d.pdf", certificateKeyPrefix, credential, at.UnixMilli())
}

// certificateKeyFromURL maps a stored document URL back to its object key.
func certificateKeyFromURL(documentURL string) string {
	p := documentURL
	if u, err := url.Parse(documentURL); err == nil {
		p = u.Path
	}
	return certificateKeyPrefix + path.Base(p)
}

func certificateData(user *models.User, program *models.Program, cert models.Certificate) pdfrender.CertificateData {
	data := pdfrender.CertificateData{
		Credential: cert.Credential,
		Title:      cert.Title,
		IssuedAt:   cert.IssuedAt,
		ExpiredAt:  cert.ExpiredAt,
	}
	if user != nil {
		data.FullName = user.FullName
	}
	if program != nil {
		data.ProgramTitle = program.Title
		data.ProgramType = string(program.Type)
	}
	return data
}

// prepare renders the certificate and uploads it under a fresh key.
func (i *certificateIssuer) prepare(ctx context.Context, data pdfrender.CertificateData) (storedDocument, error) {
	pdf, err := i.renderer.RenderCertificate(ctx, data)
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return storedDocument{}, err
		}
		return storedDocument{}, apperr.BadGateway("Failed to render certificate", err, apperr.Ctx("credential", data.Credential))
	}

	key := certificateKey(data.Credential, i.now())
	documentURL, err := i.storage.Upload(ctx, key, pdf, "application/pdf")
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return storedDocument{}, err
		}
		return storedDocument{}, apperr.BadGateway("Failed to upload certificate", err, apperr.Ctx("key", key))
	}
	return storedDocument{Key: key, URL: documentURL}, nil
}

// discard removes a document whose database row was never written.
func (i *certificateIssuer) discard(ctx context.Context, doc storedDocument) {
	if doc.Key == "" {
		return
	}
	if err := i.storage.Delete(context.WithoutCancel(ctx), doc.Key); err != nil {
		i.log.Warnw("[CERTIFICATE] Orphaned certificate document", "key", doc.Key, "error", err)
	}
}

func (i *certificateIssuer) notify(user *models.User, program *models.Program, cert models.Certificate) {
	if i.mailer == nil || user == nil {
		return
	}
	title := cert.Title
	if program != nil {
		title = program.Title
	}
	documentURL := ""
	if cert.DocumentURL != nil {
		documentURL = *cert.DocumentURL
	}
	i.mailer.SendMessages(utils.CertificateEmail(user.Email, user.FullName, title, cert.Credential, documentURL))
}
