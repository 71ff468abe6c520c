package forumValidator

import (
	"elearning/utils"
	"elearning/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	DiscussionIDParam = "id"
	CommentIDParam    = "id"

	CreateDiscussionKey = "validatedDiscussion"
	UpdateDiscussionKey = "validatedDiscussionUpdate"
	DiscussionListKey   = "validatedDiscussionList"
	CreateCommentKey    = "validatedComment"
	UpdateCommentKey    = "validatedCommentUpdate"
	CommentListKey      = "validatedCommentList"
)

type CreateDiscussionRequest struct {
	ProgramID *uint  `json:"programId" validate:"omitempty,min=1"`
	Title     string `json:"title" validate:"required,min=3,max=200"`
	Content   string `json:"content" validate:"required,max=10000"`
}

type UpdateDiscussionRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=3,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1,max=10000"`
}

type DiscussionListQuery struct {
	utils.PageQuery
	ProgramID uint `query:"programId"`
	UserID    uint `query:"userId"`
}

type CreateCommentRequest struct {
	ParentID *uint  `json:"parentId" validate:"omitempty,min=1"`
	Content  string `json:"content" validate:"required,max=5000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type CommentListQuery struct {
	utils.PageQuery
}

func CreateDiscussion() fiber.Handler {
	return validators.Body[CreateDiscussionRequest](CreateDiscussionKey)
}

func UpdateDiscussion() fiber.Handler {
	return validators.Body[UpdateDiscussionRequest](UpdateDiscussionKey)
}

func DiscussionList() fiber.Handler {
	return validators.Query[DiscussionListQuery](DiscussionListKey)
}

func CreateComment() fiber.Handler {
	return validators.Body[CreateCommentRequest](CreateCommentKey)
}

func UpdateComment() fiber.Handler {
	return validators.Body[UpdateCommentRequest](UpdateCommentKey)
}

func CommentList() fiber.Handler {
	return validators.Query[CommentListQuery](CommentListKey)
}
