package mapping

import "strings"

// ExtractionSQL renders columns as an aligned SELECT against table. Columns
// must already be sorted by order. The audit token is aliased to the audit
// column wherever it appears.
//
//	SELECT A
//	     , SYSDATE AS ETL_CRY_DTM
//	  FROM T
func ExtractionSQL(table string, columns []Column) string {
	if len(columns) == 0 {
		return "SELECT *\n  FROM " + table
	}

	var b strings.Builder
	for i, c := range columns {
		if i == 0 {
			b.WriteString("SELECT ")
		} else {
			b.WriteString("\n     , ")
		}
		b.WriteString(selectExpr(c.sourceColumn))
	}
	b.WriteString("\n  FROM ")
	b.WriteString(table)
	return b.String()
}

func selectExpr(source string) string {
	if source == AuditSourceToken {
		return AuditSourceToken + " AS " + AuditTargetColumn
	}
	return source
}
