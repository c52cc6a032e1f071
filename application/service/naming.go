package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/dagforge/domain/naming"
)

// NamingTokenParams is one token of a naming rule.
type NamingTokenParams struct {
	Type  string
	Value string
}

// NamingRuleParams is the full content of the naming rule.
type NamingRuleParams struct {
	Tokens    []NamingTokenParams
	Separator string
}

// NamingRules manages the single active naming rule.
type NamingRules struct {
	store  naming.Store
	logger *slog.Logger
}

// NewNamingRules creates a new NamingRules service.
func NewNamingRules(store naming.Store, logger *slog.Logger) *NamingRules {
	return &NamingRules{store: store, logger: logger}
}

// Active returns the saved rule, or nil when none has been saved.
func (s *NamingRules) Active(ctx context.Context) (*naming.Rule, error) {
	rule, err := s.store.Active(ctx)
	if errors.Is(err, naming.ErrRuleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get naming rule: %w", err)
	}
	return &rule, nil
}

// Save validates and replaces the active rule.
func (s *NamingRules) Save(ctx context.Context, params NamingRuleParams) (naming.Rule, error) {
	tokens := make([]naming.Token, len(params.Tokens))
	for i, t := range params.Tokens {
		tokens[i] = naming.NewToken(naming.Kind(t.Type), t.Value)
	}
	rule := naming.NewRule(tokens, params.Separator)
	if err := rule.Validate(); err != nil {
		return naming.Rule{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	saved, err := s.store.Save(ctx, rule)
	if err != nil {
		return naming.Rule{}, fmt.Errorf("save naming rule: %w", err)
	}
	s.logger.Info("naming rule saved", slog.String("pattern", saved.String()))
	return saved, nil
}
