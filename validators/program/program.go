package programValidator

import (
	"encoding/json"
	"time"

	"elearning/utils"
	"elearning/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	ProgramIDParam = "id"
	ModuleIDParam  = "moduleId"

	CreateProgramKey = "validatedProgram"
	UpdateProgramKey = "validatedProgramUpdate"
	ProgramListKey   = "validatedProgramList"
	CreateModuleKey  = "validatedModule"
	UpdateModuleKey  = "validatedModuleUpdate"
)

type CreateProgramRequest struct {
	Title         string          `json:"title" validate:"required,min=3,max=200"`
	Description   string          `json:"description" validate:"max=5000"`
	ThumbnailURL  *string         `json:"thumbnailUrl" validate:"omitempty,url"`
	Type          string          `json:"type" validate:"required,program_type"`
	PriceIdr      int64           `json:"priceIdr" validate:"min=0"`
	AvailableDate time.Time       `json:"availableDate" validate:"required"`
	Details       json.RawMessage `json:"details"`
}

type UpdateProgramRequest struct {
	Title         *string         `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string         `json:"description" validate:"omitempty,max=5000"`
	ThumbnailURL  *string         `json:"thumbnailUrl" validate:"omitempty,url"`
	PriceIdr      *int64          `json:"priceIdr" validate:"omitempty,min=0"`
	AvailableDate *time.Time      `json:"availableDate"`
	Details       json.RawMessage `json:"details"`
}

type ProgramListQuery struct {
	utils.PageQuery
	Type  string `query:"type" validate:"omitempty,program_type"`
	Title string `query:"title" validate:"omitempty,max=200"`
}

type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	OrderIndex  *int   `json:"orderIndex" validate:"omitempty,min=0"`
}

type UpdateModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	OrderIndex  *int    `json:"orderIndex" validate:"omitempty,min=0"`
}

func CreateProgram() fiber.Handler {
	return validators.Body[CreateProgramRequest](CreateProgramKey)
}

func UpdateProgram() fiber.Handler {
	return validators.Body[UpdateProgramRequest](UpdateProgramKey)
}

func ProgramList() fiber.Handler {
	return validators.Query[ProgramListQuery](ProgramListKey)
}

func CreateModule() fiber.Handler {
	return validators.Body[CreateModuleRequest](CreateModuleKey)
}

func UpdateModule() fiber.Handler {
	return validators.Body[UpdateModuleRequest](UpdateModuleKey)
}
