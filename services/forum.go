package services

import (
	"context"

	"elearning/apperr"
	"elearning/models"
	"elearning/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var discussionSorts = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
}

var commentSorts = map[string]string{
	"createdAt": "created_at",
}

type ForumService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewForumService(d Deps) *ForumService {
	return &ForumService{db: d.DB, log: d.logger()}
}

type DiscussionView struct {
	models.Discussion
	AuthorName   string `json:"authorName"`
	LikeCount    int64  `json:"likeCount"`
	CommentCount int64  `json:"commentCount"`
}

type CommentView struct {
	models.Comment
	AuthorName string `json:"authorName"`
	LikeCount  int64  `json:"likeCount"`
}

type countRow struct {
	ID    uint
	Total int64
}

func (s *ForumService) likeCounts(ctx context.Context, target models.LikeTarget, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []countRow
	if err := s.db.WithContext(ctx).Model(&models.Like{}).
		Select("target_id AS id, COUNT(*) AS total").
		Where("target_type = ? AND target_id IN ?", target, ids).
		Group("target_id").Scan(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "Like")
	}
	for _, r := range rows {
		out[r.ID] = r.Total
	}
	return out, nil
}

func (s *ForumService) commentCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []countRow
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("discussion_id AS id, COUNT(*) AS total").
		Where("discussion_id IN ?", ids).
		Group("discussion_id").Scan(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "Comment")
	}
	for _, r := range rows {
		out[r.ID] = r.Total
	}
	return out, nil
}

func (s *ForumService) discussionViews(ctx context.Context, rows []models.Discussion) ([]DiscussionView, error) {
	ids := make([]uint, 0, len(rows))
	for _, d := range rows {
		ids = append(ids, d.ID)
	}
	likes, err := s.likeCounts(ctx, models.LikeDiscussion, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]DiscussionView, 0, len(rows))
	for _, d := range rows {
		v := DiscussionView{Discussion: d, LikeCount: likes[d.ID], CommentCount: comments[d.ID]}
		if d.User != nil {
			v.AuthorName = d.User.FullName
		}
		views = append(views, v)
	}
	return views, nil
}

type DiscussionFilter struct {
	utils.PageQuery
	ProgramID uint
	UserID    uint
}

func (s *ForumService) filteredDiscussions(ctx context.Context, f DiscussionFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Discussion{})
	if f.ProgramID != 0 {
		q = q.Where("program_id = ?", f.ProgramID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	return q
}

func (s *ForumService) ListDiscussions(ctx context.Context, f DiscussionFilter) ([]DiscussionView, utils.Pagination, error) {
	sort, err := utils.SortScope(f.Sort, discussionSorts, "-createdAt")
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	var total int64
	if err := s.filteredDiscussions(ctx, f).Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Discussion")
	}
	var rows []models.Discussion
	if err := s.filteredDiscussions(ctx, f).Preload("User").
		Scopes(sort, utils.Paginate(f.PageQuery)).Find(&rows).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Discussion")
	}
	views, err := s.discussionViews(ctx, rows)
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	return views, utils.NewPagination(f.PageQuery, total, len(views)), nil
}

func (s *ForumService) discussion(ctx context.Context, id uint) (*models.Discussion, error) {
	var d models.Discussion
	if err := s.db.WithContext(ctx).Preload("User").First(&d, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Discussion", apperr.Ctx("discussionId", id))
	}
	return &d, nil
}

func (s *ForumService) GetDiscussion(ctx context.Context, id uint) (*DiscussionView, error) {
	d, err := s.discussion(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.discussionViews(ctx, []models.Discussion{*d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

type DiscussionInput struct {
	ProgramID *uint
	Title     string
	Content   string
}

func (s *ForumService) CreateDiscussion(ctx context.Context, actor Actor, in DiscussionInput) (*DiscussionView, error) {
	db := s.db.WithContext(ctx)
	if in.ProgramID != nil {
		if err := db.Select("id").First(&models.Program{}, *in.ProgramID).Error; err != nil {
			return nil, apperr.FromDB(err, "Program", apperr.Ctx("programId", *in.ProgramID))
		}
	}
	d := models.Discussion{UserID: actor.UserID, ProgramID: in.ProgramID, Title: in.Title, Content: in.Content}
	if err := db.Create(&d).Error; err != nil {
		return nil, apperr.FromDB(err, "Discussion")
	}
	return s.GetDiscussion(ctx, d.ID)
}

type DiscussionPatch struct {
	Title   *string
	Content *string
}

func (s *ForumService) UpdateDiscussion(ctx context.Context, actor Actor, id uint, in DiscussionPatch) (*DiscussionView, error) {
	d, err := s.discussion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(d.UserID) {
		return nil, apperr.Forbidden("You can only edit your own discussions", apperr.Ctx("discussionId", id))
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Discussion{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, apperr.FromDB(err, "Discussion")
		}
	}
	return s.GetDiscussion(ctx, id)
}

// DeleteDiscussion soft-deletes a discussion together with its comments.
func (s *ForumService) DeleteDiscussion(ctx context.Context, actor Actor, id uint) error {
	d, err := s.discussion(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(d.UserID) {
		return apperr.Forbidden("You can only delete your own discussions", apperr.Ctx("discussionId", id))
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discussion_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Discussion{}, id).Error
	})
	return apperr.FromDB(err, "Discussion")
}

func (s *ForumService) ListComments(ctx context.Context, discussionID uint, q utils.PageQuery) ([]CommentView, utils.Pagination, error) {
	if _, err := s.discussion(ctx, discussionID); err != nil {
		return nil, utils.Pagination{}, err
	}
	sort, err := utils.SortScope(q.Sort, commentSorts, "createdAt")
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Comment{}).Where("discussion_id = ?", discussionID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Comment")
	}
	var rows []models.Comment
	if err := base().Preload("User").Scopes(sort, utils.Paginate(q)).Find(&rows).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "Comment")
	}

	ids := make([]uint, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}
	likes, err := s.likeCounts(ctx, models.LikeComment, ids)
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	views := make([]CommentView, 0, len(rows))
	for _, c := range rows {
		v := CommentView{Comment: c, LikeCount: likes[c.ID]}
		if c.User != nil {
			v.AuthorName = c.User.FullName
		}
		views = append(views, v)
	}
	return views, utils.NewPagination(q, total, len(views)), nil
}

type CommentInput struct {
	ParentID *uint
	Content  string
}

func (s *ForumService) CreateComment(ctx context.Context, actor Actor, discussionID uint, in CommentInput) (*models.Comment, error) {
	if _, err := s.discussion(ctx, discussionID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if in.ParentID != nil {
		var parent models.Comment
		if err := db.First(&parent, *in.ParentID).Error; err != nil {
			return nil, apperr.FromDB(err, "Comment", apperr.Ctx("parentId", *in.ParentID))
		}
		if parent.DiscussionID != discussionID {
			return nil, apperr.Validation("Parent comment belongs to another discussion", apperr.Ctx("parentId", *in.ParentID))
		}
	}
	c := models.Comment{DiscussionID: discussionID, UserID: actor.UserID, ParentID: in.ParentID, Content: in.Content}
	if err := db.Create(&c).Error; err != nil {
		return nil, apperr.FromDB(err, "Comment")
	}
	return &c, nil
}

func (s *ForumService) ownComment(ctx context.Context, actor Actor, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Comment", apperr.Ctx("commentId", id))
	}
	if !actor.CanAccess(c.UserID) {
		return nil, apperr.Forbidden("You can only change your own comments", apperr.Ctx("commentId", id))
	}
	return &c, nil
}

func (s *ForumService) UpdateComment(ctx context.Context, actor Actor, id uint, content string) (*models.Comment, error) {
	c, err := s.ownComment(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	c.Content = content
	if err := s.db.WithContext(ctx).Model(c).Update("content", content).Error; err != nil {
		return nil, apperr.FromDB(err, "Comment")
	}
	return c, nil
}

func (s *ForumService) DeleteComment(ctx context.Context, actor Actor, id uint) error {
	c, err := s.ownComment(ctx, actor, id)
	if err != nil {
		return err
	}
	return apperr.FromDB(s.db.WithContext(ctx).Delete(c).Error, "Comment")
}

func (s *ForumService) targetExists(ctx context.Context, target models.LikeTarget, id uint) error {
	db := s.db.WithContext(ctx).Select("id")
	switch target {
	case models.LikeDiscussion:
		return apperr.FromDB(db.First(&models.Discussion{}, id).Error, "Discussion", apperr.Ctx("discussionId", id))
	case models.LikeComment:
		return apperr.FromDB(db.First(&models.Comment{}, id).Error, "Comment", apperr.Ctx("commentId", id))
	}
	return apperr.Validation("Unknown like target", apperr.Ctx("target", target))
}

func (s *ForumService) Like(ctx context.Context, actor Actor, target models.LikeTarget, id uint) (*models.Like, error) {
	if err := s.targetExists(ctx, target, id); err != nil {
		return nil, err
	}
	like := models.Like{UserID: actor.UserID, TargetType: target, TargetID: id}
	if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Already liked", apperr.Ctx("target", target), apperr.Ctx("id", id))
		}
		return nil, apperr.FromDB(err, "Like")
	}
	return &like, nil
}

func (s *ForumService) Unlike(ctx context.Context, actor Actor, target models.LikeTarget, id uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", actor.UserID, target, id).
		Delete(&models.Like{})
	if res.Error != nil {
		return apperr.FromDB(res.Error, "Like")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Like not found", apperr.Ctx("target", target), apperr.Ctx("id", id))
	}
	return nil
}
