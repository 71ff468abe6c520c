package userController

import (
	"elearning/middleware"
	"elearning/models"
	"elearning/services"
	"elearning/validators"
	userValidator "elearning/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	users *services.UserService
}

func New(users *services.UserService) *Controller {
	return &Controller{users: users}
}

func (ctl *Controller) Me(c *fiber.Ctx) error {
	user, err := ctl.users.GetOne(c.UserContext(), middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

func (ctl *Controller) UpdateMe(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[userValidator.UpdateMeRequest](c, userValidator.UpdateMeKey)
	if err != nil {
		return err
	}

	user, err := ctl.users.UpdateMe(c.UserContext(), middleware.ActorFrom(c).UserID, services.UserPatch{
		FullName: reqData.FullName,
		Password: reqData.Password,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", user)
}

func (ctl *Controller) UpdateAvatar(c *fiber.Ctx) error {
	data, _ := c.Locals(userValidator.AvatarKey).([]byte)
	user, err := ctl.users.UpdateAvatar(c.UserContext(), middleware.ActorFrom(c).UserID, data)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Avatar updated successfully!", user)
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	q, err := validators.FromLocals[userValidator.UserListQuery](c, userValidator.UserListKey)
	if err != nil {
		return err
	}

	users, pagination, err := ctl.users.GetMany(c.UserContext(), services.UserFilter{
		PageQuery: q.PageQuery,
		Role:      models.Role(q.Role),
		Email:     q.Email,
	})
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Users fetched successfully!", users, pagination)
}

func (ctl *Controller) GetOne(c *fiber.Ctx) error {
	user, err := ctl.users.GetOne(c.UserContext(), validators.Param(c, userValidator.UserIDParam))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully!", user)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	id := validators.Param(c, userValidator.UserIDParam)
	if err := ctl.users.Delete(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", fiber.Map{"id": id})
}
