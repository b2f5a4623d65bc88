package notification

import (
	"context"

	"github.com/go-arcade/ideaflow/internal/engine/model"
	"github.com/go-arcade/ideaflow/internal/engine/model/notification"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by every store for a missing notification.
var ErrNotFound = gorm.ErrRecordNotFound

// INotificationRepository is the notification read model. Save is the
// idempotent write used by the consumer: a redelivered event is a no-op.
type INotificationRepository interface {
	notify.Store
	ListByUser(ctx context.Context, userID uint64, page model.PageQuery) ([]notification.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, id uint64) error
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
	Delete(ctx context.Context, id uint64) error
}

type NotificationRepo struct {
	db database.DB
}

func NewNotificationRepo(db database.DB) INotificationRepository {
	return &NotificationRepo{db: db}
}

// Save 以 event_id 幂等写入
func (r *NotificationRepo) Save(ctx context.Context, e *notify.Event) (bool, error) {
	n := notification.FromEvent(e)
	res := database.WriteDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListByUser 分页，最新的在前
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, page model.PageQuery) ([]notification.Notification, int64, error) {
	page = page.Normalize()
	query := database.ReadDB(ctx, r.db).Model(&notification.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []notification.Notification
	err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Size).Find(&rows).Error
	return rows, total, err
}

// UnreadCount 未读数量
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := database.ReadDB(ctx, r.db).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead 标记已读，重复标记不报错
func (r *NotificationRepo) MarkRead(ctx context.Context, id uint64) error {
	res := database.WriteDB(ctx, r.db).Model(&notification.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := database.WriteDB(ctx, r.db).Model(&notification.Notification{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res := database.WriteDB(ctx, r.db).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// Delete 删除通知
func (r *NotificationRepo) Delete(ctx context.Context, id uint64) error {
	res := database.WriteDB(ctx, r.db).Where("id = ?", id).Delete(&notification.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
