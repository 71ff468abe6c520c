package forumRoutes

import (
	forumController "elearning/controllers/forum"
	"elearning/middleware"
	"elearning/models"
	"elearning/validators"
	forumValidator "elearning/validators/forum"

	"github.com/gofiber/fiber/v2"
)

func SetupForumRoutes(app fiber.Router, auth *middleware.Auth, ctl *forumController.Controller) {
	discussionGroup := app.Group("/discussions", auth.Protect())
	discussionID := validators.Params(forumValidator.DiscussionIDParam)

	discussionGroup.Get("/", forumValidator.DiscussionList(), ctl.ListDiscussions)
	discussionGroup.Post("/", forumValidator.CreateDiscussion(), ctl.CreateDiscussion)
	discussionGroup.Get("/:id", discussionID, ctl.GetDiscussion)
	discussionGroup.Patch("/:id", discussionID, forumValidator.UpdateDiscussion(), ctl.UpdateDiscussion)
	discussionGroup.Delete("/:id", discussionID, ctl.DeleteDiscussion)

	discussionGroup.Get("/:id/comments", discussionID, forumValidator.CommentList(), ctl.ListComments)
	discussionGroup.Post("/:id/comments", discussionID, forumValidator.CreateComment(), ctl.CreateComment)

	discussionGroup.Post("/:id/likes", discussionID, ctl.Like(models.LikeDiscussion))
	discussionGroup.Delete("/:id/likes", discussionID, ctl.Unlike(models.LikeDiscussion))

	commentGroup := app.Group("/comments", auth.Protect())
	commentID := validators.Params(forumValidator.CommentIDParam)

	commentGroup.Patch("/:id", commentID, forumValidator.UpdateComment(), ctl.UpdateComment)
	commentGroup.Delete("/:id", commentID, ctl.DeleteComment)
	commentGroup.Post("/:id/likes", commentID, ctl.Like(models.LikeComment))
	commentGroup.Delete("/:id/likes", commentID, ctl.Unlike(models.LikeComment))
}
