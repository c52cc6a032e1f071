package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMapping(t *testing.T) {
	m := NewMapping(1, 2, "HR.EMPLOYEES", "staff")

	assert.Equal(t, "employees", m.TargetTable())
	assert.Equal(t, StatusDraft, m.Status())
	assert.Equal(t, "HR.EMPLOYEES -> employees", m.Name())
	assert.Equal(t, StatusGenerated, m.MarkGenerated().Status())
	assert.Equal(t, StatusDraft, m.Status(), "MarkGenerated must not mutate the receiver")
}

func TestParseSourceRef(t *testing.T) {
	assert.Equal(t, SourceRef{Owner: "HR", Table: "EMP"}, ParseSourceRef("hr.emp", "scott"))
	assert.Equal(t, SourceRef{Owner: "SCOTT", Table: "EMP"}, ParseSourceRef("emp", "scott"))
	assert.Equal(t, SourceRef{Owner: "", Table: "EMP"}, ParseSourceRef("emp", ""))
}

func TestValidateColumns(t *testing.T) {
	ok := []Column{NewColumn("A", "", "a", "", 1), AuditColumn(2)}
	assert.NoError(t, ValidateColumns(ok))

	dup := []Column{NewColumn("A", "", "a", "", 1), NewColumn("B", "", "b", "", 1)}
	assert.ErrorIs(t, ValidateColumns(dup), ErrDuplicateColumnOrder)

	zero := []Column{NewColumn("A", "", "a", "", 0)}
	assert.ErrorIs(t, ValidateColumns(zero), ErrInvalidColumnOrder)

	twoAudits := []Column{AuditColumn(1), AuditColumn(2)}
	assert.Error(t, ValidateColumns(twoAudits))
}

func TestSortColumns(t *testing.T) {
	in := []Column{NewColumn("C", "", "c", "", 3), NewColumn("A", "", "a", "", 1), NewColumn("B", "", "b", "", 2)}
	out := SortColumns(in)

	assert.Equal(t, "A", out[0].SourceColumn())
	assert.Equal(t, "C", out[2].SourceColumn())
	assert.Equal(t, "C", in[0].SourceColumn(), "input must not be reordered")
}
