package notification

import (
	"context"
	"time"

	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/google/wire"
)

// ProviderSet 提供 notification 模块的 repository 依赖
var ProviderSet = wire.NewSet(
	ProvideNotificationRepo,
	wire.Bind(new(notify.Store), new(INotificationRepository)),
)

// ProvideNotificationRepo uses MongoDB when it is configured, else MySQL.
func ProvideNotificationRepo(manager database.Manager, db database.DB) (INotificationRepository, error) {
	mc := manager.Mongo()
	if mc == nil {
		return NewNotificationRepo(db), nil
	}
	repo := NewMongoNotificationRepo(mc)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	log.Infow("notifications stored in mongodb")
	return repo, nil
}
