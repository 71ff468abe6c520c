package authController

import (
	"elearning/middleware"
	"elearning/services"
	"elearning/validators"
	authValidator "elearning/validators/auth"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	users *services.UserService
}

func New(users *services.UserService) *Controller {
	return &Controller{users: users}
}

func (ctl *Controller) Register(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[authValidator.RegisterRequest](c, authValidator.RegisterKey)
	if err != nil {
		return err
	}

	user, err := ctl.users.Register(c.UserContext(), services.RegisterInput{
		FullName: reqData.FullName,
		Email:    reqData.Email,
		Password: reqData.Password,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully!", user)
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[authValidator.LoginRequest](c, authValidator.LoginKey)
	if err != nil {
		return err
	}

	result, err := ctl.users.Login(c.UserContext(), reqData.Email, reqData.Password)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", result)
}

// Logout revokes the token used for this request.
func (ctl *Controller) Logout(c *fiber.Ctx) error {
	if err := ctl.users.Logout(c.UserContext(), middleware.ClaimsFrom(c)); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully!", nil)
}
