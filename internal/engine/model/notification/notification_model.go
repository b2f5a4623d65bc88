package notification

import (
	"time"

	"github.com/go-arcade/ideaflow/internal/pkg/notify"
)

// Notification is the materialized read model of a notify.Event.
type Notification struct {
	ID        uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" bson:"id"`
	EventID   string      `gorm:"column:event_id;type:varchar(64);not null;uniqueIndex:uk_notification_event" json:"eventId" bson:"eventId"`
	UserID    uint64      `gorm:"column:user_id;not null;index:idx_notification_user_read,priority:1" json:"userId" bson:"userId"`
	IdeaID    uint64      `gorm:"column:idea_id" json:"ideaId,omitempty" bson:"ideaId,omitempty"`
	Type      notify.Type `gorm:"column:type;type:varchar(32);not null" json:"type" bson:"type"`
	Title     string      `gorm:"column:title;type:varchar(255)" json:"title" bson:"title"`
	Message   string      `gorm:"column:message;type:text" json:"message" bson:"message"`
	Read      bool        `gorm:"column:is_read;not null;index:idx_notification_user_read,priority:2" json:"read" bson:"read"`
	CreatedAt time.Time   `gorm:"column:created_at;index" json:"createdAt" bson:"createdAt"`
}

func (Notification) TableName() string {
	return "t_notification"
}

// FromEvent builds an unread notification.
func FromEvent(e *notify.Event) *Notification {
	return &Notification{
		EventID:   e.EventID,
		UserID:    e.UserID,
		IdeaID:    e.IdeaID,
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
}

type UnreadCountResp struct {
	UserID uint64 `json:"userId"`
	Unread int64  `json:"unread"`
}
