package mapping

import (
	"strings"

	"github.com/helixml/dagforge/domain/dialect"
)

// Audit column constants. A mapping carries exactly one load-time column;
// it is synthesized from AuditSourceToken when the source has none.
const (
	AuditSourceToken  = "SYSDATE"
	AuditSourceType   = "SYSTEM"
	AuditTargetColumn = "ETL_CRY_DTM"
	AuditTargetType   = "TIMESTAMP"
	AuditLogicalName  = "ETL Creation Time"
	auditComment      = "ETL load time"
)

// Placeholder column used when source metadata is unavailable.
const (
	FallbackColumn      = "*"
	FallbackType        = "UNKNOWN"
	FallbackLogicalName = "All Columns (DB fetch failed)"
	fallbackComment     = "column metadata could not be read from the source"
)

var auditMarkers = []string{"ETL_DTM", "ETL_CRY_DTM"}

// RawColumn is column metadata as read from a source catalog.
type RawColumn struct {
	Name        string
	Type        string
	IsPK        bool
	IsNullable  bool
	IsPartition bool
	Comment     string
}

// Normalized is the outcome of normalizing raw columns.
type Normalized struct {
	columns       []Column
	fallback      bool
	auditInjected bool
	untranslated  []string
}

// Columns returns the ordered mapping columns.
func (n Normalized) Columns() []Column {
	result := make([]Column, len(n.columns))
	copy(result, n.columns)
	return result
}

// Fallback reports whether the placeholder column was used.
func (n Normalized) Fallback() bool { return n.fallback }

// AuditInjected reports whether the synthetic audit column was appended.
func (n Normalized) AuditInjected() bool { return n.auditInjected }

// Untranslated lists source types that had no translation rule.
func (n Normalized) Untranslated() []string { return n.untranslated }

// Normalize converts raw source columns into ordered mapping columns for
// the target dialect. Orders start at 1 and follow the input order. When
// no raw column is an audit marker, a synthetic SYSDATE column is appended.
// An empty input yields the single placeholder column.
func Normalize(raw []RawColumn, target dialect.Dialect) Normalized {
	if len(raw) == 0 {
		col := NewColumn(FallbackColumn, FallbackType, FallbackColumn, FallbackType, 1).
			WithDescription(FallbackLogicalName, fallbackComment)
		return Normalized{columns: []Column{col}, fallback: true}
	}

	result := Normalized{columns: make([]Column, 0, len(raw)+1)}
	hasAudit := false
	for i, rc := range raw {
		if isAuditMarker(rc.Name) {
			hasAudit = true
		}
		translation := dialect.Translate(rc.Type, target)
		if !translation.Exact() {
			result.untranslated = append(result.untranslated, rc.Type)
		}
		logical := rc.Comment
		if logical == "" {
			logical = LogicalName(rc.Name)
		}
		col := NewColumn(strings.ToUpper(rc.Name), rc.Type, strings.ToLower(rc.Name), translation.Type(), i+1).
			WithKeys(rc.IsPK, rc.IsNullable, rc.IsPartition).
			WithDescription(logical, rc.Comment)
		result.columns = append(result.columns, col)
	}

	if !hasAudit {
		result.columns = append(result.columns, AuditColumn(len(raw)+1))
		result.auditInjected = true
	}
	return result
}

// AuditColumn builds the synthetic load-time column at the given order.
func AuditColumn(order int) Column {
	return NewColumn(AuditSourceToken, AuditSourceType, AuditTargetColumn, AuditTargetType, order).
		WithKeys(false, false, false).
		WithDescription(AuditLogicalName, auditComment)
}

// LogicalName renders a column name as a sentence-cased label:
// "EMP_NAME" becomes "Emp name".
func LogicalName(name string) string {
	s := strings.ToLower(strings.ReplaceAll(name, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func isAuditMarker(name string) bool {
	for _, m := range auditMarkers {
		if strings.EqualFold(name, m) {
			return true
		}
	}
	return false
}
