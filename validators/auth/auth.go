package authValidator

import (
	"elearning/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	RegisterKey = "validatedRegister"
	LoginKey    = "validatedLogin"
)

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register validator middleware
func Register() fiber.Handler {
	return validators.Body[RegisterRequest](RegisterKey)
}

// Login validator middleware
func Login() fiber.Handler {
	return validators.Body[LoginRequest](LoginKey)
}
