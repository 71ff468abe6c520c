package programController

import (
	"elearning/middleware"
	"elearning/models"
	"elearning/services"
	"elearning/validators"
	programValidator "elearning/validators/program"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	programs *services.ProgramService
}

func New(programs *services.ProgramService) *Controller {
	return &Controller{programs: programs}
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	q, err := validators.FromLocals[programValidator.ProgramListQuery](c, programValidator.ProgramListKey)
	if err != nil {
		return err
	}

	programs, pagination, err := ctl.programs.GetMany(c.UserContext(), services.ProgramFilter{
		PageQuery: q.PageQuery,
		Type:      models.ProgramType(q.Type),
		Title:     q.Title,
	})
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Programs fetched successfully!", programs, pagination)
}

func (ctl *Controller) GetOne(c *fiber.Ctx) error {
	program, err := ctl.programs.GetOne(c.UserContext(), validators.Param(c, programValidator.ProgramIDParam))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Program fetched successfully!", program)
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[programValidator.CreateProgramRequest](c, programValidator.CreateProgramKey)
	if err != nil {
		return err
	}

	program, err := ctl.programs.Create(c.UserContext(), services.ProgramInput{
		Title:         reqData.Title,
		Description:   reqData.Description,
		ThumbnailURL:  reqData.ThumbnailURL,
		Type:          models.ProgramType(reqData.Type),
		PriceIdr:      reqData.PriceIdr,
		AvailableDate: reqData.AvailableDate,
		Details:       reqData.Details,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Program created successfully!", program)
}

func (ctl *Controller) Update(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[programValidator.UpdateProgramRequest](c, programValidator.UpdateProgramKey)
	if err != nil {
		return err
	}

	program, err := ctl.programs.Update(c.UserContext(), validators.Param(c, programValidator.ProgramIDParam), services.ProgramPatch{
		Title:         reqData.Title,
		Description:   reqData.Description,
		ThumbnailURL:  reqData.ThumbnailURL,
		PriceIdr:      reqData.PriceIdr,
		AvailableDate: reqData.AvailableDate,
		Details:       reqData.Details,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Program updated successfully!", program)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	id := validators.Param(c, programValidator.ProgramIDParam)
	if err := ctl.programs.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Program deleted successfully!", fiber.Map{"id": id})
}

// ============ Course modules ============

func (ctl *Controller) ListModules(c *fiber.Ctx) error {
	modules, err := ctl.programs.ListModules(c.UserContext(), validators.Param(c, programValidator.ProgramIDParam))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", modules)
}

func (ctl *Controller) CreateModule(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[programValidator.CreateModuleRequest](c, programValidator.CreateModuleKey)
	if err != nil {
		return err
	}

	module, err := ctl.programs.CreateModule(c.UserContext(), validators.Param(c, programValidator.ProgramIDParam), services.ModuleInput{
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func (ctl *Controller) UpdateModule(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[programValidator.UpdateModuleRequest](c, programValidator.UpdateModuleKey)
	if err != nil {
		return err
	}

	module, err := ctl.programs.UpdateModule(c.UserContext(),
		validators.Param(c, programValidator.ProgramIDParam),
		validators.Param(c, programValidator.ModuleIDParam),
		services.ModulePatch{
			Title:       reqData.Title,
			Description: reqData.Description,
			OrderIndex:  reqData.OrderIndex,
		})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

func (ctl *Controller) DeleteModule(c *fiber.Ctx) error {
	moduleID := validators.Param(c, programValidator.ModuleIDParam)
	if err := ctl.programs.DeleteModule(c.UserContext(), validators.Param(c, programValidator.ProgramIDParam), moduleID); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", fiber.Map{"id": moduleID})
}
