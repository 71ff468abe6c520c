package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"elearning/apperr"
	"elearning/models"
	"elearning/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var programSorts = map[string]string{
	"createdAt":     "created_at",
	"availableDate": "available_date",
	"title":         "title",
	"priceIdr":      "price_idr",
}

type ProgramService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewProgramService(d Deps) *ProgramService {
	return &ProgramService{db: d.DB, log: d.logger()}
}

type ProgramFilter struct {
	utils.PageQuery
	Type  models.ProgramType
	Title string
}

func (s *ProgramService) filtered(ctx context.Context, f ProgramFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Program{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Title)+"%")
	}
	return q
}

func (s *ProgramService) GetMany(ctx context.Context, f ProgramFilter) ([]models.Program, utils.Pagination, error) {
	sort, err := utils.SortScope(f.Sort, programSorts, "-createdAt")
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Program")
	}
	rows := []models.Program{}
	if err := s.filtered(ctx, f).Scopes(sort, utils.Paginate(f.PageQuery)).Find(&rows).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Program")
	}
	return rows, utils.NewPagination(f.PageQuery, total, len(rows)), nil
}

// GetOne returns a program; courses come with their ordered modules.
func (s *ProgramService) GetOne(ctx context.Context, id uint) (*models.Program, error) {
	var p models.Program
	err := s.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC, id ASC") }).
		First(&p, id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "Program", apperr.Ctx("programId", id))
	}
	return &p, nil
}

type ProgramInput struct {
	Title         string
	Description   string
	ThumbnailURL  *string
	Type          models.ProgramType
	PriceIdr      int64
	AvailableDate time.Time
	Details       json.RawMessage
}

func (s *ProgramService) Create(ctx context.Context, in ProgramInput) (*models.Program, error) {
	if !in.Type.Valid() {
		return nil, apperr.Validation("Unknown program type", apperr.Ctx("type", in.Type))
	}
	p := models.Program{
		Title:         in.Title,
		Description:   in.Description,
		ThumbnailURL:  in.ThumbnailURL,
		Type:          in.Type,
		PriceIdr:      in.PriceIdr,
		AvailableDate: in.AvailableDate.UTC(),
	}
	if len(in.Details) > 0 {
		p.Details = datatypes.JSON(in.Details)
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, apperr.FromDB(err, "Program")
	}
	s.log.Infow("[PROGRAM] Created", "programId", p.ID, "type", p.Type)
	return &p, nil
}

type ProgramPatch struct {
	Title         *string
	Description   *string
	ThumbnailURL  *string
	PriceIdr      *int64
	AvailableDate *time.Time
	Details       json.RawMessage
}

// Update edits a program. The type is fixed once created since credentials
// and modules depend on it.
func (s *ProgramService) Update(ctx context.Context, id uint, in ProgramPatch) (*models.Program, error) {
	db := s.db.WithContext(ctx)

	var p models.Program
	if err := db.First(&p, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Program", apperr.Ctx("programId", id))
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.ThumbnailURL != nil {
		updates["thumbnail_url"] = *in.ThumbnailURL
	}
	if in.PriceIdr != nil {
		updates["price_idr"] = *in.PriceIdr
	}
	if in.AvailableDate != nil {
		updates["available_date"] = in.AvailableDate.UTC()
	}
	if len(in.Details) > 0 {
		updates["details"] = datatypes.JSON(in.Details)
	}
	if len(updates) > 0 {
		if err := db.Model(&p).Updates(updates).Error; err != nil {
			return nil, apperr.FromDB(err, "Program")
		}
	}
	return s.GetOne(ctx, id)
}

func (s *ProgramService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Program{}, id)
	if res.Error != nil {
		return apperr.FromDB(res.Error, "Program")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Program not found", apperr.Ctx("programId", id))
	}
	return nil
}

func (s *ProgramService) course(ctx context.Context, programID uint) (*models.Program, error) {
	var p models.Program
	if err := s.db.WithContext(ctx).First(&p, programID).Error; err != nil {
		return nil, apperr.FromDB(err, "Program", apperr.Ctx("programId", programID))
	}
	if p.Type != models.ProgramCourse {
		return nil, apperr.Validation("Only courses have modules", apperr.Ctx("programType", p.Type))
	}
	return &p, nil
}

func (s *ProgramService) ListModules(ctx context.Context, programID uint) ([]models.CourseModule, error) {
	if _, err := s.course(ctx, programID); err != nil {
		return nil, err
	}
	modules := []models.CourseModule{}
	if err := s.db.WithContext(ctx).Where("program_id = ?", programID).
		Order("order_index ASC, id ASC").Find(&modules).Error; err != nil {
		return nil, apperr.FromDB(err, "Course module")
	}
	return modules, nil
}

type ModuleInput struct {
	Title       string
	Description string
	OrderIndex  *int
}

func (s *ProgramService) CreateModule(ctx context.Context, programID uint, in ModuleInput) (*models.CourseModule, error) {
	if _, err := s.course(ctx, programID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	m := models.CourseModule{ProgramID: programID, Title: in.Title, Description: in.Description}
	if in.OrderIndex != nil {
		m.OrderIndex = *in.OrderIndex
	} else {
		// Get the next order index if not provided
		var maxOrder int
		if err := db.Model(&models.CourseModule{}).Where("program_id = ?", programID).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder).Error; err != nil {
			return nil, apperr.FromDB(err, "Course module")
		}
		m.OrderIndex = maxOrder + 1
	}

	if err := db.Create(&m).Error; err != nil {
		return nil, apperr.FromDB(err, "Course module")
	}
	return &m, nil
}

type ModulePatch struct {
	Title       *string
	Description *string
	OrderIndex  *int
}

func (s *ProgramService) module(ctx context.Context, programID, moduleID uint) (*models.CourseModule, error) {
	if _, err := s.course(ctx, programID); err != nil {
		return nil, err
	}
	var m models.CourseModule
	if err := s.db.WithContext(ctx).Where("program_id = ?", programID).First(&m, moduleID).Error; err != nil {
		return nil, apperr.FromDB(err, "Course module", apperr.Ctx("courseModuleId", moduleID))
	}
	return &m, nil
}

func (s *ProgramService) UpdateModule(ctx context.Context, programID, moduleID uint, in ModulePatch) (*models.CourseModule, error) {
	m, err := s.module(ctx, programID, moduleID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		m.Title = *in.Title
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.OrderIndex != nil {
		m.OrderIndex = *in.OrderIndex
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, apperr.FromDB(err, "Course module")
	}
	return m, nil
}

func (s *ProgramService) DeleteModule(ctx context.Context, programID, moduleID uint) error {
	m, err := s.module(ctx, programID, moduleID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(m).Error; err != nil {
		return apperr.FromDB(err, "Course module")
	}
	return nil
}
