package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/internal/database"
	"gorm.io/gorm"
)

// ErrForeignColumn indicates a column ID that belongs to another mapping.
var ErrForeignColumn = errors.New("column does not belong to mapping")

// MappingStore implements mapping.Store using GORM. Columns are always
// written in the same transaction as their mapping.
type MappingStore struct {
	database.Repository[mapping.Mapping, MappingModel]
	columns database.Repository[mapping.Column, MappingColumnModel]
}

// NewMappingStore creates a new MappingStore.
func NewMappingStore(db database.Database) MappingStore {
	return MappingStore{
		Repository: database.NewRepository[mapping.Mapping, MappingModel](db, MappingMapper{}, "mapping"),
		columns:    database.NewRepository[mapping.Column, MappingColumnModel](db, ColumnMapper{}, "mapping column"),
	}
}

// Save creates or updates the mapping row only.
func (s MappingStore) Save(ctx context.Context, m mapping.Mapping) (mapping.Mapping, error) {
	model := s.Mapper().ToModel(m)

	var result *gorm.DB
	if m.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}
	if result.Error != nil {
		return mapping.Mapping{}, fmt.Errorf("save mapping: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a mapping and all of its columns.
func (s MappingStore) Delete(ctx context.Context, m mapping.Mapping) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := s.columns.DeleteByTx(tx, mapping.WithMappingID(m.ID())); err != nil {
			return err
		}
		if err := tx.Delete(&MappingModel{}, m.ID()).Error; err != nil {
			return fmt.Errorf("delete mapping: %w", err)
		}
		return nil
	})
}

// Create inserts a mapping and its columns atomically.
func (s MappingStore) Create(ctx context.Context, m mapping.Mapping, columns []mapping.Column) (mapping.Detail, error) {
	if err := mapping.ValidateColumns(columns); err != nil {
		return mapping.Detail{}, err
	}
	return database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) (mapping.Detail, error) {
		model := s.Mapper().ToModel(m)
		if err := tx.Create(&model).Error; err != nil {
			return mapping.Detail{}, fmt.Errorf("create mapping: %w", err)
		}
		saved, err := s.insertColumns(tx, model.ID, columns)
		if err != nil {
			return mapping.Detail{}, err
		}
		return mapping.NewDetail(s.Mapper().ToDomain(model), saved), nil
	})
}

// Detail loads one mapping with its ordered columns.
func (s MappingStore) Detail(ctx context.Context, id int64) (mapping.Detail, error) {
	details, err := s.Details(ctx, []int64{id})
	if err != nil {
		return mapping.Detail{}, err
	}
	if len(details) == 0 {
		return mapping.Detail{}, fmt.Errorf("%w: mapping %d", database.ErrNotFound, id)
	}
	return details[0], nil
}

// Details loads mappings in the order of ids, skipping unknown IDs. Reads
// happen in one transaction that is committed before returning.
func (s MappingStore) Details(ctx context.Context, ids []int64) ([]mapping.Detail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) ([]mapping.Detail, error) {
		mappings, err := s.FindTx(tx, repository.WithIDIn(ids))
		if err != nil {
			return nil, err
		}
		columns, err := s.columns.FindTx(tx,
			repository.WithConditionIn("mapping_id", ids),
			repository.WithOrderAsc("column_order"),
		)
		if err != nil {
			return nil, err
		}

		byMapping := make(map[int64][]mapping.Column, len(mappings))
		for _, c := range columns {
			byMapping[c.MappingID()] = append(byMapping[c.MappingID()], c)
		}
		byID := make(map[int64]mapping.Mapping, len(mappings))
		for _, m := range mappings {
			byID[m.ID()] = m
		}

		details := make([]mapping.Detail, 0, len(mappings))
		for _, id := range ids {
			m, ok := byID[id]
			if !ok {
				continue
			}
			details = append(details, mapping.NewDetail(m, byMapping[id]))
		}
		return details, nil
	})
}

// ReplaceColumns makes columns the full column set of the mapping. Existing
// rows are rewritten under their original IDs so that order swaps never
// collide with the (mapping_id, column_order) unique index.
func (s MappingStore) ReplaceColumns(ctx context.Context, mappingID int64, columns []mapping.Column) ([]mapping.Column, error) {
	if err := mapping.ValidateColumns(columns); err != nil {
		return nil, err
	}
	return database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) ([]mapping.Column, error) {
		var exists int64
		if err := tx.Model(&MappingModel{}).Where("id = ?", mappingID).Count(&exists).Error; err != nil {
			return nil, fmt.Errorf("check mapping: %w", err)
		}
		if exists == 0 {
			return nil, fmt.Errorf("%w: mapping %d", database.ErrNotFound, mappingID)
		}

		current, err := s.columns.FindTx(tx, mapping.WithMappingID(mappingID))
		if err != nil {
			return nil, err
		}
		owned := make(map[int64]bool, len(current))
		for _, c := range current {
			owned[c.ID()] = true
		}
		for _, c := range columns {
			if c.ID() != 0 && !owned[c.ID()] {
				return nil, fmt.Errorf("%w: column %d, mapping %d", ErrForeignColumn, c.ID(), mappingID)
			}
		}

		if len(current) > 0 {
			if err := s.columns.DeleteByTx(tx, mapping.WithMappingID(mappingID)); err != nil {
				return nil, err
			}
		}
		return s.insertColumns(tx, mappingID, columns)
	})
}

func (s MappingStore) insertColumns(tx *gorm.DB, mappingID int64, columns []mapping.Column) ([]mapping.Column, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	mapper := s.columns.Mapper()
	models := make([]MappingColumnModel, len(columns))
	for i, c := range columns {
		models[i] = mapper.ToModel(c.WithMappingID(mappingID))
	}
	if err := tx.Create(&models).Error; err != nil {
		return nil, fmt.Errorf("create mapping columns: %w", err)
	}
	saved := make([]mapping.Column, len(models))
	for i, m := range models {
		saved[i] = mapper.ToDomain(m)
	}
	return mapping.SortColumns(saved), nil
}
