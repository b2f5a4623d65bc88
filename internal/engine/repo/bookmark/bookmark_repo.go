package bookmark

import (
	"context"

	"github.com/go-arcade/ideaflow/internal/engine/model/bookmark"
	"github.com/go-arcade/ideaflow/pkg/database"
	"gorm.io/gorm"
)

type IBookmarkRepository interface {
	Create(ctx context.Context, b *bookmark.Bookmark) error
	Get(ctx context.Context, id uint64) (*bookmark.Bookmark, error)
	Delete(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]bookmark.Bookmark, error)
}

type BookmarkRepo struct {
	db database.DB
}

func NewBookmarkRepo(db database.DB) IBookmarkRepository {
	return &BookmarkRepo{db: db}
}

// Create 收藏; a second bookmark of the same idea is a duplicate key error
func (r *BookmarkRepo) Create(ctx context.Context, b *bookmark.Bookmark) error {
	return database.WriteDB(ctx, r.db).Create(b).Error
}

func (r *BookmarkRepo) Get(ctx context.Context, id uint64) (*bookmark.Bookmark, error) {
	var b bookmark.Bookmark
	if err := database.ReadDB(ctx, r.db).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookmarkRepo) Delete(ctx context.Context, id uint64) error {
	res := database.WriteDB(ctx, r.db).Where("id = ?", id).Delete(&bookmark.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByUser 最新的在前
func (r *BookmarkRepo) ListByUser(ctx context.Context, userID uint64) ([]bookmark.Bookmark, error) {
	var rows []bookmark.Bookmark
	err := database.ReadDB(ctx, r.db).Where("user_id = ?", userID).Order("id DESC").Find(&rows).Error
	return rows, err
}
