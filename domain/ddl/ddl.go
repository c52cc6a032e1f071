// Package ddl renders mapping columns as CREATE TABLE statements for a
// target dialect.
package ddl

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/helixml/dagforge/domain/dialect"
	"github.com/helixml/dagforge/domain/mapping"
)

// DefaultSchema is the schema used for postgres tables.
const DefaultSchema = "public"

// ErrUnsupportedDialect is matched by every UnsupportedDialectError.
var ErrUnsupportedDialect = errors.New("unsupported dialect")

// ErrNoColumns indicates there is nothing to create.
var ErrNoColumns = errors.New("no columns to render")

// UnsupportedDialectError names a dialect with no DDL rules.
type UnsupportedDialectError struct {
	Dialect string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("DDL generation for %q is not supported", e.Dialect)
}

// Is matches ErrUnsupportedDialect.
func (e *UnsupportedDialectError) Is(target error) bool {
	return target == ErrUnsupportedDialect
}

type options struct {
	schema string
	now    func() time.Time
	header bool
}

// Option configures Synthesize.
type Option func(*options)

// WithSchema sets the postgres schema.
func WithSchema(schema string) Option {
	return func(o *options) {
		if schema != "" {
			o.schema = schema
		}
	}
}

// WithClock sets the clock used for the header timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithoutHeader omits the leading comment block.
func WithoutHeader() Option {
	return func(o *options) { o.header = false }
}

// Synthesize renders a CREATE TABLE statement for table in the target
// dialect. Columns are emitted by order. Only postgres and oracle are
// supported; other dialects return an *UnsupportedDialectError.
func Synthesize(table string, target dialect.Dialect, columns []mapping.Column, opts ...Option) (string, error) {
	o := options{schema: DefaultSchema, now: time.Now, header: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !target.Known() {
		return "", &UnsupportedDialectError{Dialect: target.String()}
	}
	if len(columns) == 0 {
		return "", ErrNoColumns
	}

	sorted := mapping.SortColumns(columns)

	var lines []string
	if o.header {
		lines = append(lines,
			"-- DDL for Table: "+table,
			"-- Target Database: "+strings.ToUpper(target.String()),
			"-- Generated at: "+o.now().Format("2006-01-02 15:04:05"),
			"",
		)
	}

	switch target {
	case dialect.Postgres:
		qualified := o.schema + "." + table
		lines = append(lines, "CREATE TABLE IF NOT EXISTS "+qualified+" (")
		lines = append(lines, body(table, sorted, postgresType)...)
		lines = append(lines, ");")

		var comments []string
		for _, c := range sorted {
			if c.LogicalName() == "" {
				continue
			}
			comments = append(comments, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS '%s';",
				qualified, c.TargetColumn(), escape(c.LogicalName())))
		}
		if len(comments) > 0 {
			lines = append(lines, "")
			lines = append(lines, comments...)
		}
	case dialect.Oracle:
		lines = append(lines, "CREATE TABLE "+table+" (")
		lines = append(lines, body(table, sorted, func(c mapping.Column) string { return c.TargetType() })...)
		lines = append(lines, ");")
	}

	return strings.Join(lines, "\n"), nil
}

func body(table string, columns []mapping.Column, typeOf func(mapping.Column) string) []string {
	defs := make([]string, 0, len(columns))
	var pks []string
	for _, c := range columns {
		def := "    " + c.TargetColumn() + " " + typeOf(c)
		if !c.IsNullable() {
			def += " NOT NULL"
		}
		defs = append(defs, def)
		if c.IsPK() {
			pks = append(pks, c.TargetColumn())
		}
	}

	lines := []string{strings.Join(defs, ",\n")}
	if len(pks) > 0 {
		lines = append(lines, fmt.Sprintf("    ,CONSTRAINT pk_%s PRIMARY KEY (%s)", table, strings.Join(pks, ", ")))
	}
	return lines
}

// postgresType re-applies postgres translation to stored types, which may
// have been edited by hand after normalization.
func postgresType(c mapping.Column) string {
	t := c.TargetType()
	if strings.EqualFold(strings.TrimSpace(t), mapping.AuditSourceType) {
		return "TIMESTAMP"
	}
	return dialect.Translate(t, dialect.Postgres).Type()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
