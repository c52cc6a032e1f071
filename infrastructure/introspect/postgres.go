package introspect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/jackc/pgx/v5"
)

// defaultPostgresSchema is used for unqualified Postgres table names.
const defaultPostgresSchema = "public"

const postgresTablesSQL = `
SELECT schemaname || '.' || tablename
  FROM pg_catalog.pg_tables
 WHERE schemaname NOT IN ('pg_catalog', 'information_schema')
 ORDER BY schemaname, tablename
 LIMIT $1`

const postgresTableCommentSQL = `
SELECT COALESCE(obj_description(c.oid, 'pg_class'), '')
  FROM pg_class c
  JOIN pg_namespace n ON n.oid = c.relnamespace
 WHERE n.nspname = $1 AND c.relname = $2`

const postgresColumnsSQL = `
SELECT a.attname,
       format_type(a.atttypid, a.atttypmod),
       NOT a.attnotnull,
       COALESCE(col_description(a.attrelid, a.attnum), ''),
       EXISTS (
         SELECT 1 FROM pg_index i
          WHERE i.indrelid = c.oid AND i.indisprimary AND a.attnum = ANY(i.indkey)
       ),
       EXISTS (
         SELECT 1 FROM pg_partitioned_table p
          WHERE p.partrelid = c.oid AND a.attnum = ANY(p.partattrs)
       )
  FROM pg_attribute a
  JOIN pg_class c ON c.oid = a.attrelid
  JOIN pg_namespace n ON n.oid = c.relnamespace
 WHERE n.nspname = $1 AND c.relname = $2
   AND a.attnum > 0 AND NOT a.attisdropped
 ORDER BY a.attnum`

// Postgres reads table metadata from the PostgreSQL system catalog.
type Postgres struct{}

// NewPostgres creates a Postgres introspector.
func NewPostgres() Postgres {
	return Postgres{}
}

// DSN builds a postgres:// URL for a connection.
func (Postgres) DSN(conn connection.Connection) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(conn.Username(), conn.Password()),
		Host:   conn.Host(),
		Path:   "/" + conn.Database(),
	}
	if conn.Port() > 0 {
		u.Host = conn.Host() + ":" + strconv.Itoa(conn.Port())
	}
	return u.String()
}

func (p Postgres) connect(ctx context.Context, conn connection.Connection) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(p.DSN(conn))
	if err != nil {
		return nil, fmt.Errorf("parse postgres config %s: %w", conn.Name(), err)
	}
	c, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres %s: %w", conn.Name(), err)
	}
	return c, nil
}

// Tables lists user tables as "schema.table".
func (p Postgres) Tables(ctx context.Context, conn connection.Connection) ([]string, error) {
	c, err := p.connect(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close(ctx) }()

	rows, err := c.Query(ctx, postgresTablesSQL, tableListLimit)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return tables, nil
}

// Describe reads the comment, keys and ordered columns of sourceTable.
// Unqualified names resolve against the public schema.
func (p Postgres) Describe(ctx context.Context, conn connection.Connection, sourceTable string) (mapping.TableMetadata, error) {
	c, err := p.connect(ctx, conn)
	if err != nil {
		return mapping.TableMetadata{}, err
	}
	defer func() { _ = c.Close(ctx) }()

	schema, table := SplitPostgresTable(sourceTable)

	var meta mapping.TableMetadata
	err = c.QueryRow(ctx, postgresTableCommentSQL, schema, table).Scan(&meta.Comment)
	if errors.Is(err, pgx.ErrNoRows) {
		return meta, fmt.Errorf("%w: %s.%s", ErrTableNotFound, schema, table)
	}
	if err != nil {
		return meta, fmt.Errorf("table comment: %w", err)
	}

	rows, err := c.Query(ctx, postgresColumnsSQL, schema, table)
	if err != nil {
		return meta, fmt.Errorf("columns: %w", err)
	}
	meta.Columns, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (mapping.RawColumn, error) {
		var col mapping.RawColumn
		err := row.Scan(&col.Name, &col.Type, &col.IsNullable, &col.Comment, &col.IsPK, &col.IsPartition)
		col.Type = strings.ToUpper(col.Type)
		return col, err
	})
	if err != nil {
		return meta, fmt.Errorf("columns: %w", err)
	}
	return meta, nil
}

// SplitPostgresTable splits "schema.table", defaulting the schema to public.
// Postgres identifiers keep their case.
func SplitPostgresTable(sourceTable string) (string, string) {
	schema, table, ok := strings.Cut(sourceTable, ".")
	if !ok {
		return defaultPostgresSchema, sourceTable
	}
	return schema, table
}
