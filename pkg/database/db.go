package database

import (
	"context"
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// DB 数据库接口
type DB interface {
	// DB 返回底层的 *gorm.DB
	DB() *gorm.DB
}

// GormDB GORM 数据库实现
type GormDB struct {
	db *gorm.DB
}

// NewGormDB 创建 GORM 数据库实例
func NewGormDB(db *gorm.DB) DB {
	return &GormDB{db: db}
}

func (g *GormDB) DB() *gorm.DB {
	return g.db
}

// ReadDB routes the query to a replica when replicas are configured.
// Anything that must observe its own writes uses WriteDB instead.
func ReadDB(ctx context.Context, db DB) *gorm.DB {
	return db.DB().WithContext(ctx).Clauses(dbresolver.Read)
}

// WriteDB pins the query to the primary, so a count taken right after an
// insert can not lag behind it.
func WriteDB(ctx context.Context, db DB) *gorm.DB {
	return db.DB().WithContext(ctx).Clauses(dbresolver.Write)
}

// WithTx runs fn in a transaction bound to ctx.
func WithTx(ctx context.Context, db DB, fn func(tx *gorm.DB) error) error {
	return db.DB().WithContext(ctx).Transaction(fn)
}

// IsDuplicateKey reports whether err is a unique constraint violation
// from MySQL, SQLite or MongoDB.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
