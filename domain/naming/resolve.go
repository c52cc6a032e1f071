package naming

import (
	"errors"
	"strings"
	"time"
)

// TimestampLayout formats the timestamp component of names.
const TimestampLayout = "20060102_150405"

var errEmptyName = errors.New("rule resolved to an empty name")

// Timestamp formats t for use in a name.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Context carries the values tokens resolve against. Tables may be
// schema-qualified.
type Context struct {
	SourceTable    string
	TargetTable    string
	SourceConnName string
	TargetConnName string
	Timestamp      string
}

// Resolution is a resolved name and whether the fallback pattern was used.
type Resolution struct {
	name     string
	fallback bool
	cause    error
}

// Name returns the resolved name.
func (r Resolution) Name() string { return r.name }

// Fallback reports whether the default pattern was used.
func (r Resolution) Fallback() bool { return r.fallback }

// Cause returns why the rule could not be used, or nil.
func (r Resolution) Cause() error { return r.cause }

// Resolve builds an artifact name. With a nil or unusable rule the name is
// dag_{source conn}_{source table}_{timestamp}. A non-empty prefix is always
// prepended with an underscore.
func Resolve(rule *Rule, ctx Context, prefix string) Resolution {
	res := Resolution{}
	if rule == nil {
		res.fallback = true
	} else if name, err := apply(*rule, ctx); err != nil {
		res.fallback = true
		res.cause = err
	} else {
		res.name = name
	}

	if res.fallback {
		res.name = "dag_" + Sanitize(ctx.SourceConnName) + "_" + Sanitize(ctx.SourceTable) + "_" + ctx.Timestamp
	}
	if prefix != "" {
		res.name = prefix + "_" + res.name
	}
	return res
}

func apply(rule Rule, ctx Context) (string, error) {
	if err := rule.Validate(); err != nil {
		return "", err
	}
	srcSchema, srcTable := split(ctx.SourceTable)
	tgtSchema, tgtTable := split(ctx.TargetTable)

	parts := make([]string, 0, len(rule.tokens))
	for _, t := range rule.tokens {
		var v string
		switch t.kind {
		case KindSourceSchema:
			v = srcSchema
		case KindSourceTable:
			v = srcTable
		case KindTargetSchema:
			v = tgtSchema
		case KindTargetTable:
			v = tgtTable
		case KindSourceDB:
			v = ctx.SourceConnName
		case KindTargetDB:
			v = ctx.TargetConnName
		case KindTimestamp:
			v = ctx.Timestamp
		case KindLiteral:
			v = t.value
		}
		if v = Sanitize(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "", errEmptyName
	}
	return strings.Join(parts, rule.separator), nil
}

// split separates "schema.table" on the first dot.
func split(qualified string) (schema, table string) {
	if i := strings.Index(qualified, "."); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return "", qualified
}

// Sanitize replaces every character outside [A-Za-z0-9_-] with "_".
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
