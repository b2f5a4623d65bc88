// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/trace/inject"
	"gorm.io/gorm"
)

// Manager owns the gorm connection and the optional MongoDB client.
type Manager interface {
	MySQL() *gorm.DB
	// Mongo is nil when mongo is not configured
	Mongo() *MongoClient
	Close(ctx context.Context) error
}

type manager struct {
	sql   *gorm.DB
	mongo *MongoClient
}

// NewManager connects MySQL and, when configured, MongoDB. A mongo
// failure closes the MySQL connection again. Every statement runs in a
// client span; the SQL text is recorded only when SQLLog is on.
func NewManager(ctx context.Context, cfg Database) (Manager, error) {
	db, err := openMySQL(ctx, cfg)
	if err != nil {
		return nil, err
	}
	m := &manager{sql: db}

	if err := inject.RegisterGormPlugin(db, cfg.SQLLog); err != nil {
		_ = m.Close(ctx)
		return nil, fmt.Errorf("register gorm tracing: %w", err)
	}

	if !cfg.Mongo.Enabled() {
		return m, nil
	}
	mc, err := NewMongoDB(ctx, cfg.Mongo)
	if err != nil {
		_ = m.Close(ctx)
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	m.mongo = mc
	log.Infow("mongodb connected", "db", cfg.Mongo.DB)
	return m, nil
}

// NewManagerFromDB wraps an open connection; used by tests and tools.
func NewManagerFromDB(db *gorm.DB) Manager {
	return &manager{sql: db}
}

func (m *manager) MySQL() *gorm.DB      { return m.sql }
func (m *manager) Mongo() *MongoClient { return m.mongo }

func (m *manager) Close(ctx context.Context) error {
	var errs []error
	if m.sql != nil {
		if sqlDB, err := m.sql.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if m.mongo != nil {
		errs = append(errs, m.mongo.Close(ctx))
	}
	return errors.Join(errs...)
}
