package introspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/mapping"
	go_ora "github.com/sijms/go-ora/v2"
)

// tableListLimit caps how many tables a source listing returns.
const tableListLimit = 100

const oracleTablesSQL = `
SELECT owner || '.' || table_name
  FROM all_tables
 WHERE owner NOT IN ('SYS', 'SYSTEM', 'OUTLN', 'DBSNMP', 'CTXSYS', 'MDSYS',
                     'OLAPSYS', 'ORDSYS', 'XDB', 'WMSYS', 'LBACSYS',
                     'DVSYS', 'GSMADMIN_INTERNAL', 'APPQOSSYS', 'AUDSYS')
   AND table_name NOT LIKE 'BIN$%'
 ORDER BY owner, table_name
 FETCH FIRST :1 ROWS ONLY`

const oracleTableCommentSQL = `
SELECT comments FROM all_tab_comments
 WHERE owner = :1 AND table_name = :2 AND table_type = 'TABLE'`

const oraclePrimaryKeySQL = `
SELECT cols.column_name
  FROM all_constraints cons
  JOIN all_cons_columns cols
    ON cons.constraint_name = cols.constraint_name AND cons.owner = cols.owner
 WHERE cons.constraint_type = 'P'
   AND cons.owner = :1 AND cons.table_name = :2`

const oraclePartitionKeySQL = `
SELECT column_name FROM all_part_key_columns
 WHERE owner = :1 AND name = :2 AND object_type = 'TABLE'`

const oracleColumnCommentSQL = `
SELECT column_name, comments FROM all_col_comments
 WHERE owner = :1 AND table_name = :2`

const oracleColumnsSQL = `
SELECT column_name, data_type, data_length, data_precision, data_scale, nullable
  FROM all_tab_columns
 WHERE owner = :1 AND table_name = :2
 ORDER BY column_id`

// Oracle reads table metadata from Oracle ALL_* catalog views.
type Oracle struct{}

// NewOracle creates an Oracle introspector.
func NewOracle() Oracle {
	return Oracle{}
}

// DSN builds the go-ora connection URL for a connection. The database field
// is treated as the service name.
func (Oracle) DSN(conn connection.Connection) string {
	return go_ora.BuildUrl(conn.Host(), conn.Port(), conn.Database(), conn.Username(), conn.Password(), nil)
}

func (o Oracle) open(ctx context.Context, conn connection.Connection) (*sql.DB, error) {
	db, err := sql.Open("oracle", o.DSN(conn))
	if err != nil {
		return nil, fmt.Errorf("open oracle %s: %w", conn.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect oracle %s: %w", conn.Name(), err)
	}
	return db, nil
}

// Tables lists user tables as "OWNER.TABLE", excluding system schemas and
// recycle-bin entries.
func (o Oracle) Tables(ctx context.Context, conn connection.Connection) ([]string, error) {
	db, err := o.open(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	return queryStrings(ctx, db, oracleTablesSQL, tableListLimit)
}

// Describe reads the comment, keys and ordered columns of sourceTable.
// Unqualified names resolve against the connecting user's schema.
func (o Oracle) Describe(ctx context.Context, conn connection.Connection, sourceTable string) (mapping.TableMetadata, error) {
	db, err := o.open(ctx, conn)
	if err != nil {
		return mapping.TableMetadata{}, err
	}
	defer func() { _ = db.Close() }()

	ref := mapping.ParseSourceRef(sourceTable, conn.Username())

	var meta mapping.TableMetadata
	var comment sql.NullString
	err = db.QueryRowContext(ctx, oracleTableCommentSQL, ref.Owner, ref.Table).Scan(&comment)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return meta, fmt.Errorf("table comment: %w", err)
	}
	meta.Comment = comment.String

	pks, err := queryStrings(ctx, db, oraclePrimaryKeySQL, ref.Owner, ref.Table)
	if err != nil {
		return meta, fmt.Errorf("primary key: %w", err)
	}
	partitions, err := queryStrings(ctx, db, oraclePartitionKeySQL, ref.Owner, ref.Table)
	if err != nil {
		return meta, fmt.Errorf("partition key: %w", err)
	}
	comments, err := oracleColumnComments(ctx, db, ref)
	if err != nil {
		return meta, err
	}

	rows, err := db.QueryContext(ctx, oracleColumnsSQL, ref.Owner, ref.Table)
	if err != nil {
		return meta, fmt.Errorf("columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pkSet := setOf(pks)
	partSet := setOf(partitions)
	for rows.Next() {
		var (
			name, dataType, nullable string
			length                   int64
			precision, scale         sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &length, &precision, &scale, &nullable); err != nil {
			return meta, fmt.Errorf("scan column: %w", err)
		}
		meta.Columns = append(meta.Columns, mapping.RawColumn{
			Name:        name,
			Type:        OracleType(dataType, length, precision, scale),
			IsPK:        pkSet[name],
			IsNullable:  nullable == "Y",
			IsPartition: partSet[name],
			Comment:     comments[name],
		})
	}
	if err := rows.Err(); err != nil {
		return meta, fmt.Errorf("columns: %w", err)
	}
	if len(meta.Columns) == 0 {
		return meta, fmt.Errorf("%w: %s.%s", ErrTableNotFound, ref.Owner, ref.Table)
	}
	return meta, nil
}

func oracleColumnComments(ctx context.Context, db *sql.DB, ref mapping.SourceRef) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, oracleColumnCommentSQL, ref.Owner, ref.Table)
	if err != nil {
		return nil, fmt.Errorf("column comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	comments := make(map[string]string)
	for rows.Next() {
		var name string
		var comment sql.NullString
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, fmt.Errorf("scan column comment: %w", err)
		}
		comments[name] = comment.String
	}
	return comments, rows.Err()
}

// OracleType renders ALL_TAB_COLUMNS type information as a readable type
// string. NUMBER with a positive scale becomes DECIMAL(p,s), NUMBER with only
// a precision stays NUMBER(p), and a bare NUMBER is reported as INTEGER.
func OracleType(dataType string, length int64, precision, scale sql.NullInt64) string {
	switch {
	case dataType == "VARCHAR2" || dataType == "CHAR" || dataType == "NVARCHAR2" || dataType == "NCHAR":
		return fmt.Sprintf("%s(%d)", dataType, length)
	case dataType == "NUMBER":
		if precision.Valid && precision.Int64 > 0 && scale.Valid && scale.Int64 > 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", precision.Int64, scale.Int64)
		}
		if precision.Valid && precision.Int64 > 0 {
			return fmt.Sprintf("NUMBER(%d)", precision.Int64)
		}
		return "INTEGER"
	case strings.Contains(dataType, "TIMESTAMP"):
		return "TIMESTAMP"
	case dataType == "CLOB" || dataType == "NCLOB" || dataType == "LONG":
		return "TEXT"
	default:
		return dataType
	}
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func setOf(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
