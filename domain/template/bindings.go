package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule indicates a schedule expression that does not parse.
var ErrInvalidSchedule = errors.New("invalid schedule")

// presets are schedule keywords accepted verbatim.
var presets = map[string]bool{
	"@once":       true,
	"@continuous": true,
}

// ScheduleExpr is a validated schedule. The zero value means no schedule.
type ScheduleExpr struct {
	expr string
}

// ParseSchedule validates expr. Empty input means no schedule. "@once" and
// "@continuous" are accepted as-is; anything else must be a five-field
// cron expression or a cron descriptor such as "@daily".
func ParseSchedule(expr string) (ScheduleExpr, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || presets[expr] {
		return ScheduleExpr{expr: expr}, nil
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(expr); err != nil {
			return ScheduleExpr{}, fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, expr, err)
		}
	}
	return ScheduleExpr{expr: expr}, nil
}

// String returns the raw expression.
func (s ScheduleExpr) String() string { return s.expr }

// IsZero reports whether no schedule was given.
func (s ScheduleExpr) IsZero() bool { return s.expr == "" }

// Literal renders the schedule as source text: None when absent, otherwise
// a single-quoted string.
func (s ScheduleExpr) Literal() string {
	if s.expr == "" {
		return "None"
	}
	return "'" + strings.ReplaceAll(s.expr, "'", `\'`) + "'"
}

// BoolLiteral renders b as True or False.
func BoolLiteral(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Bindings are the computed values for one generated artifact.
type Bindings struct {
	SourceSQL   string
	SourceTable string
	TargetTable string
	SourceConn  string
	TargetConn  string
	DagName     string
	Schedule    ScheduleExpr
	Catchup     bool
}

// Values returns the placeholder bindings. Every placeholder is bound, so
// any accepted spelling of it is substituted.
func (b Bindings) Values() Values {
	return Values{
		SourceSQL:   b.SourceSQL,
		SourceTable: b.SourceTable,
		TargetTable: b.TargetTable,
		SourceConn:  b.SourceConn,
		TargetConn:  b.TargetConn,
		DagName:     b.DagName,
		Schedule:    b.Schedule.Literal(),
		Catchup:     BoolLiteral(b.Catchup),
	}
}
