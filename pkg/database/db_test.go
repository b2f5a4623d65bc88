package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type uniqueRow struct {
	ID   uint64 `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func openTestDB(t *testing.T) DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), NewGormConfig(false))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&uniqueRow{}))
	return NewGormDB(gdb)
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("insert vote: %w", gorm.ErrDuplicatedKey), true},
		{"mysql 1062", &mysqldriver.MySQLError{Number: 1062, Message: "dup"}, true},
		{"mysql other", &mysqldriver.MySQLError{Number: 1045, Message: "denied"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: t_unique_row.name"), true},
		{"unrelated", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKey(tt.err))
		})
	}
}

func TestIsDuplicateKey_SQLite(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, WriteDB(ctx, db).Create(&uniqueRow{Name: "a"}).Error)
	err := WriteDB(ctx, db).Create(&uniqueRow{Name: "a"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestWithTx_RollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := WithTx(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Create(&uniqueRow{Name: "b"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, ReadDB(ctx, db).Model(&uniqueRow{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestNewManagerFromDB(t *testing.T) {
	db := openTestDB(t)
	m := NewManagerFromDB(db.DB())
	assert.Nil(t, m.Mongo())
	assert.NotNil(t, m.MySQL())
	assert.NoError(t, m.Close(context.Background()))
}

func TestSource_DSN(t *testing.T) {
	s := Source{Host: "db", User: "app", Password: "p@ss", DBName: "ideaflow"}
	dsn := s.DSN()
	assert.Contains(t, dsn, "app:p@ss@tcp(db:3306)/ideaflow")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	assert.Error(t, Source{Host: "db"}.validate())
	assert.NoError(t, s.validate())
}

func TestPool_Defaults(t *testing.T) {
	p := Pool{MaxOpenConns: 8}.withDefaults()
	assert.Equal(t, 8, p.MaxOpenConns)
	assert.Equal(t, 10, p.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, p.ConnMaxLifetime)
}
