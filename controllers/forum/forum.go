package forumController

import (
	"elearning/middleware"
	"elearning/models"
	"elearning/services"
	"elearning/validators"
	forumValidator "elearning/validators/forum"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	forum *services.ForumService
}

func New(forum *services.ForumService) *Controller {
	return &Controller{forum: forum}
}

// ============ Discussions ============

func (ctl *Controller) ListDiscussions(c *fiber.Ctx) error {
	q, err := validators.FromLocals[forumValidator.DiscussionListQuery](c, forumValidator.DiscussionListKey)
	if err != nil {
		return err
	}

	discussions, pagination, err := ctl.forum.ListDiscussions(c.UserContext(), services.DiscussionFilter{
		PageQuery: q.PageQuery,
		ProgramID: q.ProgramID,
		UserID:    q.UserID,
	})
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Discussions fetched successfully!", discussions, pagination)
}

func (ctl *Controller) GetDiscussion(c *fiber.Ctx) error {
	discussion, err := ctl.forum.GetDiscussion(c.UserContext(), validators.Param(c, forumValidator.DiscussionIDParam))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussion fetched successfully!", discussion)
}

func (ctl *Controller) CreateDiscussion(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[forumValidator.CreateDiscussionRequest](c, forumValidator.CreateDiscussionKey)
	if err != nil {
		return err
	}

	discussion, err := ctl.forum.CreateDiscussion(c.UserContext(), middleware.ActorFrom(c), services.DiscussionInput{
		ProgramID: reqData.ProgramID,
		Title:     reqData.Title,
		Content:   reqData.Content,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Discussion created successfully!", discussion)
}

func (ctl *Controller) UpdateDiscussion(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[forumValidator.UpdateDiscussionRequest](c, forumValidator.UpdateDiscussionKey)
	if err != nil {
		return err
	}

	discussion, err := ctl.forum.UpdateDiscussion(c.UserContext(), middleware.ActorFrom(c),
		validators.Param(c, forumValidator.DiscussionIDParam), services.DiscussionPatch{
			Title:   reqData.Title,
			Content: reqData.Content,
		})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussion updated successfully!", discussion)
}

func (ctl *Controller) DeleteDiscussion(c *fiber.Ctx) error {
	id := validators.Param(c, forumValidator.DiscussionIDParam)
	if err := ctl.forum.DeleteDiscussion(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussion deleted successfully!", fiber.Map{"id": id})
}

// ============ Comments ============

func (ctl *Controller) ListComments(c *fiber.Ctx) error {
	q, err := validators.FromLocals[forumValidator.CommentListQuery](c, forumValidator.CommentListKey)
	if err != nil {
		return err
	}

	comments, pagination, err := ctl.forum.ListComments(c.UserContext(), validators.Param(c, forumValidator.DiscussionIDParam), q.PageQuery)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Comments fetched successfully!", comments, pagination)
}

func (ctl *Controller) CreateComment(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[forumValidator.CreateCommentRequest](c, forumValidator.CreateCommentKey)
	if err != nil {
		return err
	}

	comment, err := ctl.forum.CreateComment(c.UserContext(), middleware.ActorFrom(c),
		validators.Param(c, forumValidator.DiscussionIDParam), services.CommentInput{
			ParentID: reqData.ParentID,
			Content:  reqData.Content,
		})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Comment created successfully!", comment)
}

func (ctl *Controller) UpdateComment(c *fiber.Ctx) error {
	reqData, err := validators.FromLocals[forumValidator.UpdateCommentRequest](c, forumValidator.UpdateCommentKey)
	if err != nil {
		return err
	}

	comment, err := ctl.forum.UpdateComment(c.UserContext(), middleware.ActorFrom(c), validators.Param(c, forumValidator.CommentIDParam), reqData.Content)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment updated successfully!", comment)
}

func (ctl *Controller) DeleteComment(c *fiber.Ctx) error {
	id := validators.Param(c, forumValidator.CommentIDParam)
	if err := ctl.forum.DeleteComment(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment deleted successfully!", fiber.Map{"id": id})
}

// ============ Likes ============

// Like returns a handler liking the target named by the :id route param.
func (ctl *Controller) Like(target models.LikeTarget) fiber.Handler {
	return func(c *fiber.Ctx) error {
		like, err := ctl.forum.Like(c.UserContext(), middleware.ActorFrom(c), target, validators.Param(c, "id"))
		if err != nil {
			return err
		}
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Liked successfully!", like)
	}
}

func (ctl *Controller) Unlike(target models.LikeTarget) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := ctl.forum.Unlike(c.UserContext(), middleware.ActorFrom(c), target, validators.Param(c, "id")); err != nil {
			return err
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Like removed successfully!", nil)
	}
}
