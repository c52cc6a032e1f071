package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/dagforge/domain/naming"
	"github.com/helixml/dagforge/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeRuleID is the primary key of the single naming rule row.
const activeRuleID = 1

// NamingRuleStore implements naming.Store using GORM.
type NamingRuleStore struct {
	db database.Database
}

// NewNamingRuleStore creates a new NamingRuleStore.
func NewNamingRuleStore(db database.Database) NamingRuleStore {
	return NamingRuleStore{db: db}
}

// Active returns the saved rule. A row whose tokens cannot be decoded is
// reported as an error, not as a missing rule.
func (s NamingRuleStore) Active(ctx context.Context) (naming.Rule, error) {
	var model NamingRuleModel
	err := s.db.Session(ctx).Where("id = ?", activeRuleID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return naming.Rule{}, naming.ErrRuleNotFound
	}
	if err != nil {
		return naming.Rule{}, fmt.Errorf("load naming rule: %w", err)
	}

	tokens, err := decodeTokens(model.RuleTokens)
	if err != nil {
		return naming.Rule{}, err
	}
	return naming.ReconstructRule(tokens, model.Separator, model.UpdatedAt), nil
}

// Save upserts the single rule row.
func (s NamingRuleStore) Save(ctx context.Context, rule naming.Rule) (naming.Rule, error) {
	encoded, err := encodeTokens(rule.Tokens())
	if err != nil {
		return naming.Rule{}, err
	}
	model := NamingRuleModel{
		ID:         activeRuleID,
		RuleTokens: encoded,
		Separator:  rule.Separator(),
		UpdatedAt:  time.Now().UTC(),
	}
	err = s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rule_tokens", "separator", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return naming.Rule{}, fmt.Errorf("save naming rule: %w", err)
	}
	return naming.ReconstructRule(rule.Tokens(), model.Separator, model.UpdatedAt), nil
}
