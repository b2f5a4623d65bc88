package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

const slowQuery = time.Second

// NewGormConfig returns the settings every dialect shares: t_ prefix,
// singular table names and translated driver errors. sqlLog logs each
// statement at debug level; otherwise only slow queries and errors.
func NewGormConfig(sqlLog bool) *gorm.Config {
	level := gormlogger.Warn
	if sqlLog {
		level = gormlogger.Info
	}
	return &gorm.Config{
		Logger:         &gormLogger{level: level},
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   tablePrefix,
			SingularTable: true,
		},
	}
}

func openMySQL(ctx context.Context, cfg Database) (*gorm.DB, error) {
	if err := cfg.MySQL.validate(); err != nil {
		return nil, err
	}
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), NewGormConfig(cfg.SQLLog))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	pool := cfg.Pool.withDefaults()

	if cfg.MySQL.resolved() {
		resolver, err := newResolver(cfg.MySQL, cfg.SQLLog)
		if err != nil {
			return nil, err
		}
		resolver.SetMaxOpenConns(pool.MaxOpenConns).
			SetMaxIdleConns(pool.MaxIdleConns).
			SetConnMaxLifetime(pool.ConnMaxLifetime).
			SetConnMaxIdleTime(pool.ConnMaxIdleTime)
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("register dbresolver: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	log.Infow("mysql connected", "host", cfg.MySQL.Host, "db", cfg.MySQL.DBName,
		"primaries", len(cfg.MySQL.Primary), "replicas", len(cfg.MySQL.Replicas))
	return db, nil
}

func newResolver(cfg MySQLConfig, trace bool) (*dbresolver.DBResolver, error) {
	dialectors := func(sources []Source) ([]gorm.Dialector, error) {
		out := make([]gorm.Dialector, 0, len(sources))
		for _, s := range sources {
			if err := s.validate(); err != nil {
				return nil, err
			}
			out = append(out, mysql.Open(s.DSN()))
		}
		return out, nil
	}

	primaries, err := dialectors(cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	replicas, err := dialectors(cfg.Replicas)
	if err != nil {
		return nil, fmt.Errorf("replica: %w", err)
	}
	return dbresolver.Register(dbresolver.Config{
		Sources:           primaries,
		Replicas:          replicas,
		TraceResolverMode: trace,
	}), nil
}

// gormLogger writes gorm output through our logger under component=gorm.
type gormLogger struct {
	level gormlogger.LogLevel
}

func (l *gormLogger) logger() *zap.SugaredLogger {
	// resolved per call so a logger initialised after gorm.Open is picked up
	return log.Named("gorm").WithOptions(zap.AddCallerSkip(3))
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.logger().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.logger().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.logger().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.logger().Errorw("sql failed", log.Trace(ctx), "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case elapsed > slowQuery && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger().Warnw("slow sql", log.Trace(ctx), "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger().Debugw("sql", log.Trace(ctx), "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
