package userValidator

import (
	"strings"

	"elearning/apperr"
	"elearning/services"
	"elearning/utils"
	"elearning/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	UpdateMeKey = "validatedUserUpdate"
	UserListKey = "validatedUserList"
	AvatarKey   = "validatedAvatar"
	AvatarField = "avatar"
	UserIDParam = "id"
)

type UpdateMeRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=2,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type UserListQuery struct {
	utils.PageQuery
	Role  string `query:"role" validate:"omitempty,role"`
	Email string `query:"email" validate:"omitempty,max=255"`
}

func UpdateMe() fiber.Handler {
	return validators.Body[UpdateMeRequest](UpdateMeKey)
}

func UserList() fiber.Handler {
	return validators.Query[UserListQuery](UserListKey)
}

// Avatar reads the multipart "avatar" file into memory.
func Avatar() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			return apperr.UnsupportedMediaType("Content-Type must be multipart/form-data",
				apperr.Ctx("contentType", c.Get(fiber.HeaderContentType)))
		}
		fh, err := c.FormFile(AvatarField)
		if err != nil {
			return apperr.Validation("Avatar file is required!", apperr.Ctx("field", AvatarField))
		}
		data, err := utils.ReadUploadedFile(fh, services.MaxAvatarBytes)
		if err != nil {
			return err
		}
		c.Locals(AvatarKey, data)
		return c.Next()
	}
}
