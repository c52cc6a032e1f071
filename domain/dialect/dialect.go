// Package dialect names the database type systems the engine targets and
// translates column type descriptors between them.
package dialect

import "strings"

// Dialect identifies a database type system.
type Dialect struct {
	name string
}

// Known dialects.
var (
	Postgres = Dialect{name: "postgres"}
	Oracle   = Dialect{name: "oracle"}
)

// Parse resolves a dialect tag case-insensitively. "postgresql" is accepted as
// an alias. Unknown tags yield a Dialect that keeps the tag so callers can
// report it.
func Parse(tag string) Dialect {
	name := strings.ToLower(strings.TrimSpace(tag))
	switch name {
	case "postgres", "postgresql":
		return Postgres
	case "oracle":
		return Oracle
	}
	return Dialect{name: name}
}

// String returns the dialect tag.
func (d Dialect) String() string { return d.name }

// Known reports whether d is a dialect with translation and DDL rules.
func (d Dialect) Known() bool {
	return d == Postgres || d == Oracle
}

// IsZero reports whether no dialect was given.
func (d Dialect) IsZero() bool { return d.name == "" }
