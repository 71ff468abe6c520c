package services

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
	"time"

	"elearning/apperr"
	"elearning/models"
	"elearning/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	avatarKeyPrefix = "images/avatars/"
	MaxAvatarBytes  = 2 << 20
)

var avatarTypes = []string{"image/jpeg", "image/png", "image/webp"}

var userSorts = map[string]string{
	"createdAt": "created_at",
	"fullName":  "full_name",
	"email":     "email",
}

type UserService struct {
	db        *gorm.DB
	log       *zap.SugaredLogger
	now       func() time.Time
	tokens    *utils.TokenManager
	store     ObjectStorage
	saltRound int
}

func NewUserService(d Deps, tokens *utils.TokenManager, saltRound int) *UserService {
	return &UserService{
		db:        d.DB,
		log:       d.logger(),
		now:       d.clock(),
		tokens:    tokens,
		store:     d.Storage,
		saltRound: saltRound,
	}
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) create(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	email := normalizeEmail(in.Email)
	db := s.db.WithContext(ctx)

	var exists int64
	if err := db.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&exists).Error; err != nil {
		return nil, apperr.FromDB(err, "User")
	}
	if exists > 0 {
		return nil, apperr.Conflict("Email is already registered", apperr.Ctx("email", email))
	}

	hash, err := utils.HashPassword(in.Password, s.saltRound)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}
	user := models.User{FullName: strings.TrimSpace(in.FullName), Email: email, Password: hash, Role: role}
	if err := db.Create(&user).Error; err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Email is already registered", apperr.Ctx("email", email))
		}
		return nil, apperr.FromDB(err, "User")
	}
	return &user, nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.create(ctx, in, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Infow("[AUTH] User registered", "userId", user.ID)
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless the email exists.
func (s *UserService) EnsureAdmin(ctx context.Context, in RegisterInput) (*models.User, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperr.FromDB(err, "User")
	}
	created, err := s.create(ctx, in, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil || !utils.CheckPassword(user.Password, password) {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.FromDB(err, "User")
		}
		return nil, apperr.Unauthorized("Invalid email or password", apperr.Ctx("email", email), apperr.Ctx("password", password))
	}

	token, claims, err := s.tokens.GenerateJWT(user)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	s.log.Infow("[AUTH] User logged in", "userId", user.ID)
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return apperr.Unauthorized("Invalid token")
	}
	rt := models.RevokedToken{JTI: claims.ID, ExpiresAt: claims.ExpiresAt.Time.UTC()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rt).Error; err != nil {
		return apperr.FromDB(err, "Token")
	}
	return nil
}

func (s *UserService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&n).Error; err != nil {
		return false, apperr.FromDB(err, "Token")
	}
	return n > 0, nil
}

// PurgeRevokedTokens drops revocations of tokens that have expired.
func (s *UserService) PurgeRevokedTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return 0, apperr.FromDB(res.Error, "Token")
	}
	return res.RowsAffected, nil
}

func (s *UserService) GetOne(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, apperr.FromDB(err, "User", apperr.Ctx("userId", id))
	}
	return &user, nil
}

type UserPatch struct {
	FullName *string
	Password *string
}

func (s *UserService) UpdateMe(ctx context.Context, id uint, in UserPatch) (*models.User, error) {
	user, err := s.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.saltRound)
		if err != nil {
			return nil, apperr.Internal("Failed to hash password", err)
		}
		updates["password"] = hash
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperr.FromDB(err, "User")
		}
	}
	return s.GetOne(ctx, id)
}

func avatarKeyFromURL(avatarURL string) string {
	p := avatarURL
	if u, err := url.Parse(avatarURL); err == nil {
		p = u.Path
	}
	return avatarKeyPrefix + path.Base(p)
}

// UpdateAvatar stores a new avatar image and removes the previous one.
func (s *UserService) UpdateAvatar(ctx context.Context, id uint, data []byte) (*models.User, error) {
	user, err := s.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxAvatarBytes {
		return nil, apperr.Validation("Avatar is too large", apperr.Ctx("maxSize", MaxAvatarBytes))
	}
	mt, err := utils.DetectMime(data, avatarTypes...)
	if err != nil {
		return nil, err
	}

	key := avatarKeyPrefix + uuid.NewString() + mt.Extension()
	avatarURL, err := s.store.Upload(ctx, key, data, mt.String())
	if err != nil {
		return nil, err
	}

	previous := user.AvatarURL
	if err := s.db.WithContext(ctx).Model(user).Update("avatar_url", avatarURL).Error; err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.log.Warnw("[USER] Orphaned avatar", "key", key, "error", delErr)
		}
		return nil, apperr.FromDB(err, "User")
	}
	if previous != nil && *previous != "" {
		if err := s.store.Delete(ctx, avatarKeyFromURL(*previous)); err != nil {
			s.log.Warnw("[USER] Failed to delete previous avatar", "url", *previous, "error", err)
		}
	}
	return s.GetOne(ctx, id)
}

type UserFilter struct {
	utils.PageQuery
	Role  models.Role
	Email string
}

func (s *UserService) filtered(ctx context.Context, f UserFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Email != "" {
		q = q.Where("email LIKE ?", "%"+normalizeEmail(f.Email)+"%")
	}
	return q
}

func (s *UserService) GetMany(ctx context.Context, f UserFilter) ([]models.User, utils.Pagination, error) {
	sort, err := utils.SortScope(f.Sort, userSorts, "-createdAt")
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "User")
	}
	rows := []models.User{}
	if err := s.filtered(ctx, f).Scopes(sort, utils.Paginate(f.PageQuery)).Find(&rows).Error; err != nil {
		return nil, utils.Pagination{}, apperr.FromDB(err, "User")
	}
	return rows, utils.NewPagination(f.PageQuery, total, len(rows)), nil
}

func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.UserID == id {
		return apperr.Validation("You cannot delete your own account", apperr.Ctx("userId", id))
	}
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return apperr.FromDB(res.Error, "User")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found", apperr.Ctx("userId", id))
	}
	return nil
}
