package template

import (
	"strings"
	"unicode"
)

// Placeholder is the canonical key of a substitutable value.
type Placeholder string

// Known placeholders.
const (
	SourceSQL   Placeholder = "source_sql"
	SourceTable Placeholder = "source_table"
	TargetTable Placeholder = "target_table"
	SourceConn  Placeholder = "source_conn"
	TargetConn  Placeholder = "target_conn"
	DagName     Placeholder = "dag_name"
	Schedule    Placeholder = "schedule"
	Catchup     Placeholder = "catchup"
)

// aliases is keyed by the folded spelling: no whitespace, no underscores,
// lower case. "{{ Source_SQL }}" and "{{SOURCE_SQL}}" both fold to "sourcesql".
var aliases = map[string]Placeholder{
	"sourcesql":        SourceSQL,
	"sourcetable":      SourceTable,
	"targettable":      TargetTable,
	"tablename":        TargetTable,
	"sourceconn":       SourceConn,
	"targetconn":       TargetConn,
	"dagname":          DagName,
	"schedule":         Schedule,
	"scheduleinterval": Schedule,
	"catchup":          Catchup,
}

// Canonical maps the inner text of a {{ ... }} span to its placeholder.
func Canonical(inner string) (Placeholder, bool) {
	p, ok := aliases[fold(inner)]
	return p, ok
}

func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Values binds placeholders to their rendered text.
type Values map[Placeholder]string

// Render substitutes every {{ ... }} span whose inner text names a bound
// placeholder. Other spans, including unknown or unbound placeholders and
// unterminated "{{", are copied through unchanged.
func Render(body string, values Values) string {
	return scan(body, func(inner string) (string, bool) {
		p, ok := Canonical(inner)
		if !ok {
			return "", false
		}
		v, ok := values[p]
		return v, ok
	})
}

// scan walks body once, offering each {{ ... }} inner text to replace. A
// span opens at the last "{{" before its "}}", so stray braces ahead of a
// placeholder are copied through and the placeholder is still offered.
func scan(body string, replace func(inner string) (string, bool)) string {
	var b strings.Builder
	b.Grow(len(body))
	rest := body
	for {
		first := strings.Index(rest, "{{")
		if first < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[first+2:], "}}")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		closeAt := first + 2 + end
		open := strings.LastIndex(rest[:closeAt], "{{")
		b.WriteString(rest[:open])
		if v, ok := replace(rest[open+2 : closeAt]); ok {
			b.WriteString(v)
		} else {
			b.WriteString(rest[open : closeAt+2])
		}
		rest = rest[closeAt+2:]
	}
	return b.String()
}
