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

package inject

import (
	"context"
	"errors"

	"github.com/go-arcade/ideaflow/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const gormComponent = "pkg/trace/inject/gorm"

type gormSpanKey struct{}

// GormPlugin starts a client span around every gorm statement.
type GormPlugin struct {
	// WithStatement records the SQL text. Values stay as placeholders.
	WithStatement bool
}

func (p *GormPlugin) Name() string {
	return "ideaflow:otel"
}

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	before := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) { p.before(tx, op) }
	}
	return errors.Join(
		cb.Create().Before("gorm:create").Register("otel:before_create", before("create")),
		cb.Create().After("gorm:create").Register("otel:after_create", p.after),
		cb.Query().Before("gorm:query").Register("otel:before_query", before("query")),
		cb.Query().After("gorm:query").Register("otel:after_query", p.after),
		cb.Update().Before("gorm:update").Register("otel:before_update", before("update")),
		cb.Update().After("gorm:update").Register("otel:after_update", p.after),
		cb.Delete().Before("gorm:delete").Register("otel:before_delete", before("delete")),
		cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after),
		cb.Row().Before("gorm:row").Register("otel:before_row", before("row")),
		cb.Row().After("gorm:row").Register("otel:after_row", p.after),
		cb.Raw().Before("gorm:raw").Register("otel:before_raw", before("raw")),
		cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after),
	)
}

func (p *GormPlugin) before(tx *gorm.DB, op string) {
	if tx.Statement == nil {
		return
	}
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.StartSpan(ctx, gormComponent, "gorm."+op, oteltrace.WithSpanKind(oteltrace.SpanKindClient))
	attrs := []attribute.KeyValue{
		attribute.String("db.system", tx.Dialector.Name()),
		attribute.String("db.operation", op),
	}
	if tx.Statement.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attrs...)
	tx.Statement.Context = context.WithValue(ctx, gormSpanKey{}, span)
}

func (p *GormPlugin) after(tx *gorm.DB) {
	if tx.Statement == nil || tx.Statement.Context == nil {
		return
	}
	span, ok := tx.Statement.Context.Value(gormSpanKey{}).(oteltrace.Span)
	if !ok {
		return
	}
	if p.WithStatement {
		if sql := tx.Statement.SQL.String(); sql != "" {
			span.SetAttributes(attribute.String("db.statement", sql))
		}
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))

	err := tx.Error
	// not found is an answer, not a failure
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	trace.End(span, err)
}

// RegisterGormPlugin installs the tracing plugin on db.
func RegisterGormPlugin(db *gorm.DB, withStatement bool) error {
	return db.Use(&GormPlugin{WithStatement: withStatement})
}
