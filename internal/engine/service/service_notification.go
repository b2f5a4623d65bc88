package service

import (
	"context"
	"fmt"

	"github.com/go-arcade/ideaflow/internal/engine/model"
	"github.com/go-arcade/ideaflow/internal/engine/model/notification"
	notificationrepo "github.com/go-arcade/ideaflow/internal/engine/repo/notification"
	"github.com/go-arcade/ideaflow/pkg/log"
)

// NotificationService is the read side of the notification store.
type NotificationService struct {
	notifications notificationrepo.INotificationRepository
}

func NewNotificationService(notifications notificationrepo.INotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListByUser 分页，最新的在前
func (s *NotificationService) ListByUser(ctx context.Context, userID uint64, page model.PageQuery) (*model.PageResult[notification.Notification], error) {
	page = page.Normalize()
	list, total, err := s.notifications.ListByUser(ctx, userID, page)
	if err != nil {
		log.Errorw("list notifications failed", "userId", userID, "error", err)
		return nil, fmt.Errorf("list notifications failed: %w", err)
	}
	return &model.PageResult[notification.Notification]{List: list, Total: total, Page: page.Page, Size: page.Size}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint64) (*notification.UnreadCountResp, error) {
	n, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		log.Errorw("count unread notifications failed", "userId", userID, "error", err)
		return nil, fmt.Errorf("count unread notifications failed: %w", err)
	}
	return &notification.UnreadCountResp{UserID: userID, Unread: n}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint64) error {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return wrapRepoErr(err, "notification", id)
	}
	return nil
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		log.Errorw("mark all notifications read failed", "userId", userID, "error", err)
		return 0, fmt.Errorf("mark all notifications read failed: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id uint64) error {
	if err := s.notifications.Delete(ctx, id); err != nil {
		return wrapRepoErr(err, "notification", id)
	}
	return nil
}
