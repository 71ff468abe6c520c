package models

import "time"

type Discussion struct {
	Model
	UserID    uint   `json:"userId" gorm:"index;not null"`
	ProgramID *uint  `json:"programId" gorm:"index"`
	Title     string `json:"title" gorm:"not null"`
	Content   string `json:"content" gorm:"type:text;not null"`
	User      *User  `json:"-" gorm:"foreignKey:UserID"`
}

type Comment struct {
	Model
	DiscussionID uint   `json:"discussionId" gorm:"index;not null"`
	UserID       uint   `json:"userId" gorm:"index;not null"`
	ParentID     *uint  `json:"parentId" gorm:"index"`
	Content      string `json:"content" gorm:"type:text;not null"`
	User         *User  `json:"-" gorm:"foreignKey:UserID"`
}

type LikeTarget string

const (
	LikeDiscussion LikeTarget = "discussion"
	LikeComment    LikeTarget = "comment"
)

type Like struct {
	ID         uint       `json:"id" gorm:"primarykey"`
	UserID     uint       `json:"userId" gorm:"not null;uniqueIndex:idx_like_target"`
	TargetType LikeTarget `json:"targetType" gorm:"type:varchar(16);not null;uniqueIndex:idx_like_target"`
	TargetID   uint       `json:"targetId" gorm:"not null;uniqueIndex:idx_like_target"`
	CreatedAt  time.Time  `json:"createdAt"`
}
