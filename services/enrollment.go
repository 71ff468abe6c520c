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

var enrollmentSorts = map[string]string{
	"createdAt":          "created_at",
	"updatedAt":          "updated_at",
	"status":             "status",
	"progressPercentage": "progress_percentage",
	"completedAt":        "completed_at",
}

type EnrollmentService struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	now    func() time.Time
	mailer utils.Mailer
	issuer *certificateIssuer
}

func NewEnrollmentService(d Deps) *EnrollmentService {
	return &EnrollmentService{
		db:     d.DB,
		log:    d.logger(),
		now:    d.clock(),
		mailer: d.Mailer,
		issuer: newCertificateIssuer(d),
	}
}

// EnrollmentView is an enrollment with its owner and program flattened in.
type EnrollmentView struct {
	models.Enrollment
	OwnerFullName       string                    `json:"ownerFullName"`
	ProgramTitle        string                    `json:"programTitle"`
	ProgramType         models.ProgramType        `json:"programType"`
	ProgramThumbnailURL *string                   `json:"programThumbnailUrl"`
	CompletedModules    *[]models.CompletedModule `json:"completedModules,omitempty"`
}

func newEnrollmentView(e models.Enrollment) EnrollmentView {
	v := EnrollmentView{Enrollment: e}
	if e.User != nil {
		v.OwnerFullName = e.User.FullName
	}
	if e.Program != nil {
		v.ProgramTitle = e.Program.Title
		v.ProgramType = e.Program.Type
		v.ProgramThumbnailURL = e.Program.ThumbnailURL
		if e.Program.Type == models.ProgramCourse {
			modules := e.CompletedModules
			if modules == nil {
				modules = []models.CompletedModule{}
			}
			v.CompletedModules = &modules
		}
	}
	return v
}

type EnrollmentCreated struct {
	Enrollment models.Enrollment `json:"enrollment"`
	Invoice    models.Invoice    `json:"invoice"`
}

// Create enrolls userID in programID. Admins may enroll another user and may
// enroll before the program's available date.
func (s *EnrollmentService) Create(ctx context.Context, actor Actor, programID, userID uint) (*EnrollmentCreated, error) {
	if userID == 0 || !actor.IsAdmin() {
		userID = actor.UserID
	}
	db := s.db.WithContext(ctx)
	now := s.now().UTC()

	var program models.Program
	if err := db.First(&program, programID).Error; err != nil {
		return nil, apperr.FromDB(err, "Program", apperr.Ctx("programId", programID))
	}
	if program.AvailableDate.After(now) && !actor.IsAdmin() {
		return nil, apperr.Validation("Program is not available yet",
			apperr.Ctx("programId", programID), apperr.Ctx("availableDate", program.AvailableDate.Format(time.RFC3339)))
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, apperr.FromDB(err, "User", apperr.Ctx("userId", userID))
	}

	var active int64
	if err := db.Model(&models.Enrollment{}).
		Joins("LEFT JOIN invoices ON invoices.enrollment_id = enrollments.id AND invoices.deleted_at IS NULL").
		Where("enrollments.user_id = ? AND enrollments.program_id = ?", userID, programID).
		Where("((enrollments.status IN ?) OR (enrollments.status = ? AND invoices.status = ?))",
			[]models.EnrollmentStatus{models.EnrollmentInProgress, models.EnrollmentCompleted},
			models.EnrollmentUnpaid, models.InvoiceUnverified).
		Count(&active).Error; err != nil {
		return nil, apperr.FromDB(err, "Enrollment")
	}
	if active > 0 {
		return nil, apperr.Conflict("User is already enrolled in this program",
			apperr.Ctx("userId", userID), apperr.Ctx("programId", programID))
	}

	enrollment := models.Enrollment{
		UserID:             userID,
		ProgramID:          programID,
		Status:             models.EnrollmentInProgress,
		ProgressPercentage: models.ZeroPercentage,
	}
	invoice := models.Invoice{
		AmountIdr: program.PriceIdr,
		Status:    models.InvoiceVerified,
	}
	if !program.IsFree() {
		va := utils.GenerateVirtualAccountNumber()
		due := now.Add(models.PaymentWindow)
		enrollment.Status = models.EnrollmentUnpaid
		invoice.Status = models.InvoiceUnverified
		invoice.VirtualAccountNumber = &va
		invoice.PaymentDueDatetime = &due
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		invoice.EnrollmentID = enrollment.ID
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Enrollment")
	}

	s.log.Infow("[ENROLLMENT] Created", "enrollmentId", enrollment.ID, "userId", userID, "programId", programID, "status", enrollment.Status)
	if s.mailer != nil {
		va, due := "", ""
		if invoice.VirtualAccountNumber != nil {
			va = *invoice.VirtualAccountNumber
			due = invoice.PaymentDueDatetime.Format("02 Jan 2006 15:04 MST")
		}
		s.mailer.SendMessages(utils.EnrollmentEmail(user.Email, user.FullName, program.Title, invoice.AmountIdr, va, due))
	}

	return &EnrollmentCreated{Enrollment: enrollment, Invoice: invoice}, nil
}

func (s *EnrollmentService) load(ctx context.Context, id uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Program").
		Preload("CompletedModules").
		First(&e, id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "Enrollment", apperr.Ctx("enrollmentId", id))
	}
	return &e, nil
}

func (s *EnrollmentService) loadOwned(ctx context.Context, actor Actor, id uint) (*models.Enrollment, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(e.UserID) {
		return nil, apperr.Forbidden("You do not have access to this enrollment", apperr.Ctx("enrollmentId", id))
	}
	return e, nil
}

// UpdateOne completes a non-course enrollment by hand and issues its
// certificate.
func (s *EnrollmentService) UpdateOne(ctx context.Context, actor Actor, id uint, status models.EnrollmentStatus) (*EnrollmentView, error) {
	e, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if status != models.EnrollmentCompleted {
		return nil, apperr.Validation("Enrollment can only be updated to Completed", apperr.Ctx("status", status))
	}
	switch e.Status {
	case models.EnrollmentUnpaid, models.EnrollmentCompleted, models.EnrollmentExpired:
		return nil, apperr.Validation("Enrollment status cannot be changed", apperr.Ctx("status", e.Status))
	}
	if e.Program == nil {
		return nil, apperr.NotFound("Program not found", apperr.Ctx("programId", e.ProgramID))
	}
	prefix, ok := e.Program.Type.ManualCompletionPrefix()
	if !ok {
		return nil, apperr.Validation("Course enrollments are completed through their modules",
			apperr.Ctx("programType", e.Program.Type))
	}

	now := s.now().UTC()
	cert := models.Certificate{
		EnrollmentID: e.ID,
		UserID:       e.UserID,
		Title:        e.Program.Title,
		Credential:   utils.GenerateCredential(prefix, e.ProgramID, e.UserID),
		IssuedAt:     now,
	}
	doc, err := s.issuer.prepare(ctx, certificateData(e.User, e.Program, cert))
	if err != nil {
		return nil, err
	}
	cert.DocumentURL = &doc.URL

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cert).Error; err != nil {
			return err
		}
		return tx.Model(&models.Enrollment{}).Where("id = ?", e.ID).Updates(map[string]interface{}{
			"status":              status,
			"progress_percentage": models.FullPercentage,
			"completed_at":        now,
		}).Error
	})
	if err != nil {
		s.issuer.discard(ctx, doc)
		return nil, apperr.FromDB(err, "Enrollment")
	}

	s.issuer.notify(e.User, e.Program, cert)
	return s.GetOne(ctx, actor, id)
}

type ModuleCompletion struct {
	ProgressPercentage models.Percentage      `json:"progressPercentage"`
	CompletedModule    models.CompletedModule `json:"completedModule"`
	Certificate        *models.Certificate    `json:"certificate,omitempty"`
}

// CompleteModule records a finished course module and recomputes progress.
// Reaching 100% completes the enrollment and issues a certificate.
func (s *EnrollmentService) CompleteModule(ctx context.Context, actor Actor, enrollmentID, moduleID uint) (*ModuleCompletion, error) {
	db := s.db.WithContext(ctx)

	var module models.CourseModule
	if err := db.First(&module, moduleID).Error; err != nil {
		return nil, apperr.FromDB(err, "Course module", apperr.Ctx("courseModuleId", moduleID))
	}
	e, err := s.loadOwned(ctx, actor, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.Program == nil || e.Program.Type != models.ProgramCourse {
		return nil, apperr.Validation("Only course enrollments have modules", apperr.Ctx("enrollmentId", enrollmentID))
	}
	if e.Status == models.EnrollmentUnpaid || e.Status == models.EnrollmentExpired {
		return nil, apperr.Validation("Enrollment is not active", apperr.Ctx("status", e.Status))
	}
	if module.ProgramID != e.ProgramID {
		return nil, apperr.Validation("Module does not belong to the enrolled program",
			apperr.Ctx("courseModuleId", moduleID), apperr.Ctx("programId", e.ProgramID))
	}

	for _, cm := range e.CompletedModules {
		if cm.CourseModuleID == moduleID {
			return nil, apperr.Conflict("Module already completed",
				apperr.Ctx("enrollmentId", enrollmentID), apperr.Ctx("courseModuleId", moduleID))
		}
	}

	var total int64
	if err := db.Model(&models.CourseModule{}).Where("program_id = ?", e.ProgramID).Count(&total).Error; err != nil {
		return nil, apperr.FromDB(err, "Course module")
	}
	completed := int64(len(e.CompletedModules))
	progress := models.NewPercentage(utils.ProgressPercentage(completed+1, total))
	finished := progress.String() == "100.00"

	now := s.now().UTC()
	var (
		cert *models.Certificate
		doc  storedDocument
	)
	if finished {
		var active int64
		if err := db.Model(&models.Certificate{}).
			Where("enrollment_id = ? AND (expired_at IS NULL OR expired_at > ?)", e.ID, now).
			Count(&active).Error; err != nil {
			return nil, apperr.FromDB(err, "Certificate")
		}
		if active == 0 {
			prefix, _ := models.ProgramCourse.CredentialPrefix()
			cert = &models.Certificate{
				EnrollmentID: e.ID,
				UserID:       e.UserID,
				Title:        e.Program.Title,
				Credential:   utils.GenerateCredential(prefix, e.ProgramID, e.UserID),
				IssuedAt:     now,
			}
			doc, err = s.issuer.prepare(ctx, certificateData(e.User, e.Program, *cert))
			if err != nil {
				return nil, err
			}
			cert.DocumentURL = &doc.URL
		}
	}

	record := models.CompletedModule{EnrollmentID: e.ID, CourseModuleID: moduleID, CompletedAt: now}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var done int64
		if err := tx.Model(&models.CompletedModule{}).Where("enrollment_id = ?", e.ID).Count(&done).Error; err != nil {
			return err
		}
		if done != completed+1 {
			return apperr.Conflict("Enrollment progress changed, please retry", apperr.Ctx("enrollmentId", e.ID))
		}

		updates := map[string]interface{}{
			"progress_percentage": progress,
			"status":              models.EnrollmentInProgress,
			"completed_at":        nil,
		}
		if finished {
			updates["status"] = models.EnrollmentCompleted
			updates["completed_at"] = now
			if cert != nil {
				if err := tx.Create(cert).Error; err != nil {
					return err
				}
			}
		}
		return tx.Model(&models.Enrollment{}).Where("id = ?", e.ID).Updates(updates).Error
	})
	if err != nil {
		s.issuer.discard(ctx, doc)
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Module already completed",
				apperr.Ctx("enrollmentId", enrollmentID), apperr.Ctx("courseModuleId", moduleID))
		}
		return nil, apperr.FromDB(err, "Enrollment")
	}

	if cert != nil {
		s.issuer.notify(e.User, e.Program, *cert)
	}
	return &ModuleCompletion{ProgressPercentage: progress, CompletedModule: record, Certificate: cert}, nil
}

type EnrollmentFilter struct {
	utils.PageQuery
	UserID      uint
	ProgramID   uint
	Status      models.EnrollmentStatus
	ProgramType models.ProgramType
	Created     utils.DateRange
}

func (s *EnrollmentService) filtered(ctx context.Context, f EnrollmentFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Enrollment{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ProgramID != 0 {
		q = q.Where("program_id = ?", f.ProgramID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProgramType != "" {
		q = q.Where("program_id IN (?)", s.db.WithContext(ctx).Model(&models.Program{}).Select("id").Where("type = ?", f.ProgramType))
	}
	return q.Scopes(f.Created.Scope("created_at"))
}

// GetMany lists enrollments. Non-admins only ever see their own.
func (s *EnrollmentService) GetMany(ctx context.Context, actor Actor, f EnrollmentFilter) ([]EnrollmentView, utils.Pagination, error) {
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}
	sort, err := utils.SortScope(f.Sort, enrollmentSorts, "-createdAt")
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Enrollment")
	}

	var rows []models.Enrollment
	if err := s.filtered(ctx, f).
		Preload("User").
		Preload("Program").
		Preload("CompletedModules").
		Scopes(sort, utils.Paginate(f.PageQuery)).
		Find(&rows).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Enrollment")
	}

	views := make([]EnrollmentView, 0, len(rows))
	for _, e := range rows {
		views = append(views, newEnrollmentView(e))
	}
	return views, utils.NewPagination(f.PageQuery, total, len(views)), nil
}

func (s *EnrollmentService) GetOne(ctx context.Context, actor Actor, id uint) (*EnrollmentView, error) {
	e, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	v := newEnrollmentView(*e)
	return &v, nil
}

// DeleteOne soft-deletes the enrollment and its invoice and drops its
// completed modules. Certificates already issued are kept.
func (s *EnrollmentService) DeleteOne(ctx context.Context, actor Actor, id uint) error {
	e, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("enrollment_id = ?", e.ID).Delete(&models.CompletedModule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id = ?", e.ID).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Enrollment{}, e.ID).Error
	})
	if err != nil {
		return apperr.FromDB(err, "Enrollment")
	}
	s.log.Infow("[ENROLLMENT] Deleted", "enrollmentId", id, "by", actor.UserID)
	return nil
}
