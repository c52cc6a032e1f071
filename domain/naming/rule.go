// Package naming resolves artifact names from a token-based naming rule.
package naming

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies what a Token resolves to.
type Kind string

// Token kinds.
const (
	KindSourceSchema Kind = "src_schema"
	KindSourceTable  Kind = "src_table"
	KindTargetSchema Kind = "tgt_schema"
	KindTargetTable  Kind = "tgt_table"
	KindSourceDB     Kind = "src_db"
	KindTargetDB     Kind = "tgt_db"
	KindTimestamp    Kind = "timestamp"
	KindLiteral      Kind = "literal"
)

// DefaultSeparator joins resolved tokens when a rule does not set one.
const DefaultSeparator = "_"

// ErrUnknownKind indicates a token kind outside the known set.
var ErrUnknownKind = errors.New("unknown token kind")

// ErrRuleNotFound indicates no naming rule has been saved.
var ErrRuleNotFound = errors.New("naming rule not found")

// Token is one element of a naming rule.
type Token struct {
	kind  Kind
	value string
}

// NewToken creates a token. Value is only used by literal tokens.
func NewToken(kind Kind, value string) Token {
	return Token{kind: kind, value: value}
}

// Kind returns the token kind.
func (t Token) Kind() Kind { return t.kind }

// Value returns the literal value.
func (t Token) Value() string { return t.value }

// Validate checks that the kind is known.
func (t Token) Validate() error {
	switch t.kind {
	case KindSourceSchema, KindSourceTable, KindTargetSchema, KindTargetTable,
		KindSourceDB, KindTargetDB, KindTimestamp, KindLiteral:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, string(t.kind))
}

// Rule is the active naming configuration: ordered tokens and a separator.
type Rule struct {
	tokens    []Token
	separator string
	updatedAt time.Time
}

// NewRule creates a rule. An empty separator defaults to "_".
func NewRule(tokens []Token, separator string) Rule {
	if separator == "" {
		separator = DefaultSeparator
	}
	copied := make([]Token, len(tokens))
	copy(copied, tokens)
	return Rule{tokens: copied, separator: separator, updatedAt: time.Now()}
}

// ReconstructRule recreates a Rule from persistence.
func ReconstructRule(tokens []Token, separator string, updatedAt time.Time) Rule {
	return Rule{tokens: tokens, separator: separator, updatedAt: updatedAt}
}

// Tokens returns the ordered tokens.
func (r Rule) Tokens() []Token {
	result := make([]Token, len(r.tokens))
	copy(result, r.tokens)
	return result
}

// Separator returns the join separator.
func (r Rule) Separator() string { return r.separator }

// UpdatedAt returns when the rule was last saved.
func (r Rule) UpdatedAt() time.Time { return r.updatedAt }

// Validate checks every token.
func (r Rule) Validate() error {
	var errs []error
	for i, t := range r.tokens {
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("token %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// String renders the rule as a readable pattern, e.g. "{src_table}_{timestamp}".
func (r Rule) String() string {
	parts := make([]string, len(r.tokens))
	for i, t := range r.tokens {
		if t.kind == KindLiteral {
			parts[i] = t.value
			continue
		}
		parts[i] = "{" + string(t.kind) + "}"
	}
	return strings.Join(parts, r.separator)
}

// Store persists the single active rule.
type Store interface {
	// Active returns the saved rule or ErrRuleNotFound.
	Active(ctx context.Context) (Rule, error)
	// Save replaces the active rule.
	Save(ctx context.Context, rule Rule) (Rule, error)
}
