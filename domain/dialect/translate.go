package dialect

import (
	"regexp"
	"strings"
)

// Translation is the outcome of translating one type descriptor.
type Translation struct {
	source string
	target string
	exact  bool
}

// Source returns the descriptor that was translated.
func (t Translation) Source() string { return t.source }

// Type returns the translated descriptor.
func (t Translation) Type() string { return t.target }

// Exact is false when no rule recognized the descriptor and it was passed
// through unchanged.
func (t Translation) Exact() bool { return t.exact }

// String returns the translated descriptor.
func (t Translation) String() string { return t.target }

var (
	lengthGroup = regexp.MustCompile(`\((\d+)\)`)
	argsGroup   = regexp.MustCompile(`\((.+?)\)`)
)

// Translate maps a source column type descriptor to the target dialect.
// It never fails: descriptors without a rule come back verbatim with
// Exact() == false.
func Translate(sourceType string, target Dialect) Translation {
	switch target {
	case Postgres:
		return toPostgres(sourceType)
	case Oracle:
		return toOracle(sourceType)
	}
	return passthrough(sourceType)
}

func exact(source, target string) Translation {
	return Translation{source: source, target: target, exact: true}
}

func passthrough(source string) Translation {
	return Translation{source: source, target: source}
}

func toPostgres(src string) Translation {
	t := strings.ToUpper(strings.TrimSpace(src))

	switch {
	case strings.HasPrefix(t, "NVARCHAR"):
		if m := lengthGroup.FindStringSubmatch(t); m != nil {
			return exact(src, "VARCHAR("+m[1]+")")
		}
		return exact(src, "VARCHAR(255)")
	case strings.Contains(t, "VARCHAR2"):
		return exact(src, strings.Replace(t, "VARCHAR2", "VARCHAR", 1))
	case strings.HasPrefix(t, "VARCHAR"):
		return exact(src, t)
	case strings.HasPrefix(t, "NCHAR"):
		return exact(src, strings.Replace(t, "NCHAR", "CHAR", 1))
	case strings.HasPrefix(t, "CHAR"):
		return exact(src, t)
	case strings.HasPrefix(t, "NUMBER"):
		if m := argsGroup.FindStringSubmatch(t); m != nil {
			return exact(src, "NUMERIC("+m[1]+")")
		}
		return exact(src, "NUMERIC")
	case strings.HasPrefix(t, "NUMERIC"):
		return exact(src, t)
	case t == "INTEGER":
		return exact(src, "INTEGER")
	case strings.HasPrefix(t, "DECIMAL"):
		return exact(src, strings.Replace(t, "DECIMAL", "NUMERIC", 1))
	case t == "FLOAT", t == "BINARY_FLOAT", t == "REAL":
		return exact(src, "REAL")
	case t == "BINARY_DOUBLE", t == "DOUBLE PRECISION":
		return exact(src, "DOUBLE PRECISION")
	case t == "DATE", strings.HasPrefix(t, "TIMESTAMP"):
		return exact(src, "TIMESTAMP")
	case t == "CLOB", t == "NCLOB", t == "LONG", t == "TEXT":
		return exact(src, "TEXT")
	case t == "BLOB", t == "LONG RAW", strings.HasPrefix(t, "RAW"), t == "BYTEA":
		return exact(src, "BYTEA")
	}
	return passthrough(src)
}

func toOracle(src string) Translation {
	t := strings.TrimSpace(src)
	if strings.HasPrefix(strings.ToUpper(t), "NCHAR") {
		return exact(src, "CHAR"+t[len("NCHAR"):])
	}
	return exact(src, src)
}
