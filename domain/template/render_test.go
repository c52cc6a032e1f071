package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_AllSpellingsOfOnePlaceholderGetTheSameValue(t *testing.T) {
	spellings := []string{
		"{{ source_sql }}", "{{ Source_SQL }}", "{{Source_SQL}}", "{{ SOURCE_SQL }}", "{{SOURCE_SQL}}",
	}
	for _, s := range spellings {
		t.Run(s, func(t *testing.T) {
			got := Render("sql = \"\"\""+s+"\"\"\"", Values{SourceSQL: "SELECT 1"})
			assert.Equal(t, "sql = \"\"\"SELECT 1\"\"\"", got)
		})
	}
}

func TestRender_Aliases(t *testing.T) {
	values := Bindings{
		SourceSQL:   "SELECT A\n  FROM T",
		SourceTable: "HR.T",
		TargetTable: "t",
		SourceConn:  "ora",
		TargetConn:  "pg",
		DagName:     "dag_ora_HR_T_20240101_000000",
		Catchup:     true,
	}.Values()

	body := "{{ TABLE_NAME }}|{{TABLE_NAME}}|{{ target_table }}|{{ source_table }}|" +
		"{{ source_conn }}|{{ target_conn }}|{{ Dag_Name }}|{{Dag_Name}}|{{DAG_NAME}}|" +
		"{{ schedule }}|{{ SCHEDULE_INTERVAL }}|{{ catchup }}"

	got := Render(body, values)

	assert.Equal(t, "t|t|t|HR.T|ora|pg|dag_ora_HR_T_20240101_000000|dag_ora_HR_T_20240101_000000|"+
		"dag_ora_HR_T_20240101_000000|None|None|True", got)
}

func TestRender_LeavesUnknownPlaceholders(t *testing.T) {
	body := "run on {{ ds }} for {{ target_table }} {{ params.x }}"
	got := Render(body, Values{TargetTable: "emp"})

	assert.Equal(t, "run on {{ ds }} for emp {{ params.x }}", got)
}

func TestRender_LeavesUnboundPlaceholders(t *testing.T) {
	got := Render("{{ source_sql }}", Values{})
	assert.Equal(t, "{{ source_sql }}", got)
}

func TestRender_UnterminatedSpan(t *testing.T) {
	got := Render("a {{ target_table }} b {{ oops", Values{TargetTable: "t"})
	assert.Equal(t, "a t b {{ oops", got)
}

func TestRender_StrayBracesBeforePlaceholder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"stray open", "{{ {{ source_sql }}", "{{ SELECT 1"},
		{"stray open no space", "x = {{{{target_table}} y", "x = {{t y"},
		{"triple brace", "{{{ target_table }}}", "{t}"},
		{"stray then unknown", "{{ a {{ ds }} {{ target_table }}", "{{ a {{ ds }} t"},
		{"close before open", "}} {{ target_table }} {{", "}} t {{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.body, Values{SourceSQL: "SELECT 1", TargetTable: "t"})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplate_PlaceholdersAfterStrayBraces(t *testing.T) {
	tpl := NewTemplate("t", "oracle", "postgres", "", "{{ {{ source_sql }} {{ dag_name }}")
	assert.Equal(t, []Placeholder{SourceSQL, DagName}, tpl.Placeholders())
}

func TestRender_ValuesAreNotRescanned(t *testing.T) {
	got := Render("{{ source_sql }}", Values{SourceSQL: "{{ target_table }}", TargetTable: "x"})
	assert.Equal(t, "{{ target_table }}", got)
}

func TestTemplate_Placeholders(t *testing.T) {
	tpl := NewTemplate("t", "oracle", "postgres", "", "{{ DAG_NAME }} {{Dag_Name}} {{ source_sql }} {{ ds }}")
	assert.Equal(t, []Placeholder{DagName, SourceSQL}, tpl.Placeholders())
}

func TestTemplate_Validate(t *testing.T) {
	require.NoError(t, NewTemplate("n", "", "", "", "body").Validate())

	err := NewTemplate(" ", "", "", "", "").Validate()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "name and body")
}
