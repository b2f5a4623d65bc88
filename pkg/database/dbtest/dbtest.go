// Package dbtest opens throwaway in-memory databases for repository tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a private in-memory SQLite database with models migrated.
// One connection keeps the shared-cache database alive and serialises writers.
func Open(t testing.TB, models ...any) database.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), database.NewGormConfig(false))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		require.NoError(t, gdb.AutoMigrate(models...))
	}
	return database.NewGormDB(gdb)
}
