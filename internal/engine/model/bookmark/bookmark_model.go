package bookmark

import "github.com/go-arcade/ideaflow/internal/engine/model"

// Bookmark 收藏，(user_id, idea_id) 唯一
type Bookmark struct {
	model.BaseModel
	UserID uint64 `gorm:"column:user_id;not null;uniqueIndex:uk_bookmark_user_idea,priority:1" json:"userId"`
	IdeaID uint64 `gorm:"column:idea_id;not null;uniqueIndex:uk_bookmark_user_idea,priority:2;index:idx_bookmark_idea" json:"ideaId"`
}

func (Bookmark) TableName() string {
	return "t_bookmark"
}

type CreateBookmarkReq struct {
	UserID uint64 `json:"userId"`
	IdeaID uint64 `json:"ideaId"`
}
