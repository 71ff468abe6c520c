package services

import (
	"context"
	"time"

	"elearning/apperr"
	"elearning/models"
	"elearning/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var certificateSorts = map[string]string{
	"createdAt":  "created_at",
	"issuedAt":   "issued_at",
	"expiredAt":  "expired_at",
	"credential": "credential",
	"title":      "title",
}

type CertificateService struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	now    func() time.Time
	issuer *certificateIssuer
	store  ObjectStorage
}

func NewCertificateService(d Deps) *CertificateService {
	return &CertificateService{
		db:     d.DB,
		log:    d.logger(),
		now:    d.clock(),
		issuer: newCertificateIssuer(d),
		store:  d.Storage,
	}
}

// CertificateView is a certificate with its program flattened in. The
// program fields are null for certificates whose enrollment or program is
// gone.
type CertificateView struct {
	models.Certificate
	ProgramID           *uint               `json:"programId"`
	ProgramTitle        *string             `json:"programTitle"`
	ProgramType         *models.ProgramType `json:"programType"`
	ProgramThumbnailURL *string             `json:"programThumbnailUrl"`
}

func newCertificateView(c models.Certificate) CertificateView {
	v := CertificateView{Certificate: c}
	if c.Enrollment != nil && c.Enrollment.Program != nil {
		p := c.Enrollment.Program
		v.ProgramID = &p.ID
		v.ProgramTitle = &p.Title
		v.ProgramType = &p.Type
		v.ProgramThumbnailURL = p.ThumbnailURL
	}
	return v
}

func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (s *CertificateService) withProgram(db *gorm.DB) *gorm.DB {
	return db.Preload("Enrollment", unscoped).Preload("Enrollment.Program", unscoped)
}

type CertificateInput struct {
	EnrollmentID uint
	IssuedAt     time.Time
	ExpiredAt    *time.Time
	Title        string
}

func (s *CertificateService) Create(ctx context.Context, in CertificateInput) (*CertificateView, error) {
	db := s.db.WithContext(ctx)
	now := s.now().UTC()

	var e models.Enrollment
	if err := db.Preload("User").Preload("Program").First(&e, in.EnrollmentID).Error; err != nil {
		return nil, apperr.FromDB(err, "Enrollment", apperr.Ctx("enrollmentId", in.EnrollmentID))
	}

	var active int64
	if err := db.Model(&models.Certificate{}).
		Where("enrollment_id = ? AND (expired_at IS NULL OR expired_at > ?)", e.ID, now).
		Count(&active).Error; err != nil {
		return nil, apperr.FromDB(err, "Certificate")
	}
	if active > 0 {
		return nil, apperr.Conflict("An active certificate already exists for this enrollment",
			apperr.Ctx("enrollmentId", e.ID))
	}
	if e.Status != models.EnrollmentCompleted {
		return nil, apperr.Validation("Enrollment is not completed", apperr.Ctx("status", e.Status))
	}
	if e.Program == nil {
		return nil, apperr.NotFound("Program not found", apperr.Ctx("programId", e.ProgramID))
	}

	issuedAt := in.IssuedAt.UTC()
	var expiredAt *time.Time
	if in.ExpiredAt != nil {
		t := in.ExpiredAt.UTC()
		if !t.After(issuedAt) {
			return nil, apperr.Validation("expiredAt must be after issuedAt",
				apperr.Ctx("issuedAt", issuedAt.Format(time.RFC3339)), apperr.Ctx("expiredAt", t.Format(time.RFC3339)))
		}
		expiredAt = &t
	}

	prefix, ok := e.Program.Type.CredentialPrefix()
	if !ok {
		return nil, apperr.Validation("Unknown program type", apperr.Ctx("programType", e.Program.Type))
	}
	title := in.Title
	if title == "" {
		title = e.Program.Title
	}
	cert := models.Certificate{
		EnrollmentID: e.ID,
		UserID:       e.UserID,
		Title:        title,
		Credential:   utils.GenerateCredential(prefix, e.ProgramID, e.UserID),
		IssuedAt:     issuedAt,
		ExpiredAt:    expiredAt,
	}

	doc, err := s.issuer.prepare(ctx, certificateData(e.User, e.Program, cert))
	if err != nil {
		return nil, err
	}
	cert.DocumentURL = &doc.URL

	if err := db.Create(&cert).Error; err != nil {
		s.issuer.discard(ctx, doc)
		return nil, apperr.FromDB(err, "Certificate")
	}

	s.log.Infow("[CERTIFICATE] Issued", "certificateId", cert.ID, "credential", cert.Credential)
	s.issuer.notify(e.User, e.Program, cert)

	e.User = nil
	cert.Enrollment = &e
	v := newCertificateView(cert)
	return &v, nil
}

type CertificateUpdate struct {
	Title     *string
	IssuedAt  *time.Time
	ExpiredAt *time.Time
}

// UpdateOne re-renders the certificate under a fresh key. The previous
// document is left in storage.
func (s *CertificateService) UpdateOne(ctx context.Context, id uint, in CertificateUpdate) (*CertificateView, error) {
	db := s.db.WithContext(ctx)

	var cert models.Certificate
	if err := s.withProgram(db).First(&cert, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Certificate", apperr.Ctx("certificateId", id))
	}

	if in.Title != nil {
		cert.Title = *in.Title
	}
	if in.IssuedAt != nil {
		cert.IssuedAt = in.IssuedAt.UTC()
	}
	if in.ExpiredAt != nil {
		t := in.ExpiredAt.UTC()
		cert.ExpiredAt = &t
	}
	if cert.ExpiredAt != nil && !cert.ExpiredAt.After(cert.IssuedAt) {
		return nil, apperr.Validation("expiredAt must be after issuedAt",
			apperr.Ctx("issuedAt", cert.IssuedAt.Format(time.RFC3339)), apperr.Ctx("expiredAt", cert.ExpiredAt.Format(time.RFC3339)))
	}

	var user models.User
	if err := db.Unscoped().First(&user, cert.UserID).Error; err != nil {
		return nil, apperr.FromDB(err, "User", apperr.Ctx("userId", cert.UserID))
	}
	var program *models.Program
	if cert.Enrollment != nil {
		program = cert.Enrollment.Program
	}

	doc, err := s.issuer.prepare(ctx, certificateData(&user, program, cert))
	if err != nil {
		return nil, err
	}
	cert.DocumentURL = &doc.URL

	err = db.Model(&models.Certificate{}).Where("id = ?", cert.ID).Updates(map[string]interface{}{
		"title":        cert.Title,
		"issued_at":    cert.IssuedAt,
		"expired_at":   cert.ExpiredAt,
		"document_url": cert.DocumentURL,
	}).Error
	if err != nil {
		s.issuer.discard(ctx, doc)
		return nil, apperr.FromDB(err, "Certificate")
	}

	return s.GetOne(ctx, Actor{Role: models.RoleAdmin}, id)
}

func (s *CertificateService) DeleteOne(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)

	var cert models.Certificate
	if err := db.First(&cert, id).Error; err != nil {
		return apperr.FromDB(err, "Certificate", apperr.Ctx("certificateId", id))
	}

	if cert.DocumentURL != nil && *cert.DocumentURL != "" {
		if err := s.store.Delete(ctx, certificateKeyFromURL(*cert.DocumentURL)); err != nil {
			return err
		}
	}
	if err := db.Delete(&models.Certificate{}, cert.ID).Error; err != nil {
		return apperr.FromDB(err, "Certificate")
	}
	s.log.Infow("[CERTIFICATE] Deleted", "certificateId", id)
	return nil
}

type CertificateFilter struct {
	utils.PageQuery
	UserID       uint
	EnrollmentID uint
	Credential   string
}

func (s *CertificateService) filtered(ctx context.Context, f CertificateFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Certificate{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EnrollmentID != 0 {
		q = q.Where("enrollment_id = ?", f.EnrollmentID)
	}
	if f.Credential != "" {
		q = q.Where("credential = ?", f.Credential)
	}
	return q
}

func (s *CertificateService) GetMany(ctx context.Context, actor Actor, f CertificateFilter) ([]CertificateView, utils.Pagination, error) {
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}
	sort, err := utils.SortScope(f.Sort, certificateSorts, "-createdAt")
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Certificate")
	}

	var rows []models.Certificate
	if err := s.withProgram(s.filtered(ctx, f)).Scopes(sort, utils.Paginate(f.PageQuery)).Find(&rows).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Certificate")
	}

	views := make([]CertificateView, 0, len(rows))
	for _, c := range rows {
		views = append(views, newCertificateView(c))
	}
	return views, utils.NewPagination(f.PageQuery, total, len(views)), nil
}

func (s *CertificateService) GetOne(ctx context.Context, actor Actor, id uint) (*CertificateView, error) {
	var cert models.Certificate
	if err := s.withProgram(s.db.WithContext(ctx)).First(&cert, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Certificate", apperr.Ctx("certificateId", id))
	}
	if !actor.CanAccess(cert.UserID) {
		return nil, apperr.Forbidden("You do not have access to this certificate", apperr.Ctx("certificateId", id))
	}
	v := newCertificateView(cert)
	return &v, nil
}
