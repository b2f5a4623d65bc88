package database

import (
	"context"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/google/wire"
)

// ProviderSet provides database-related dependencies
var ProviderSet = wire.NewSet(
	ProvideManager,
	ProvideDB,
)

// ProvideManager creates and returns a database Manager instance
func ProvideManager(conf Database, _ *log.Logger) (Manager, func(), error) {
	ctx := context.Background()
	m, err := NewManager(ctx, conf)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := m.Close(ctx); err != nil {
			log.Errorw("close databases failed", "error", err)
		}
	}
	return m, cleanup, nil
}

// ProvideDB exposes the MySQL connection to repositories.
func ProvideDB(manager Manager) DB {
	return NewGormDB(manager.MySQL())
}
