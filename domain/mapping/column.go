package mapping

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateColumnOrder indicates two columns of one mapping share an order.
var ErrDuplicateColumnOrder = errors.New("duplicate column order")

// ErrInvalidColumnOrder indicates a column order below 1.
var ErrInvalidColumnOrder = errors.New("column order must be at least 1")

// Column is one source-to-target column pairing within a Mapping.
type Column struct {
	id                    int64
	mappingID             int64
	sourceColumn          string
	sourceType            string
	targetColumn          string
	targetType            string
	order                 int
	isPK                  bool
	isNullable            bool
	isPartition           bool
	logicalName           string
	sourceComment         string
	transRule             string
	isExtractionCondition bool
}

// NewColumn creates a nullable, non-key column.
func NewColumn(sourceColumn, sourceType, targetColumn, targetType string, order int) Column {
	return Column{
		sourceColumn: sourceColumn,
		sourceType:   sourceType,
		targetColumn: targetColumn,
		targetType:   targetType,
		order:        order,
		isNullable:   true,
	}
}

// ReconstructColumn recreates a Column from persistence.
func ReconstructColumn(
	id, mappingID int64,
	sourceColumn, sourceType, targetColumn, targetType string,
	order int,
	isPK, isNullable, isPartition bool,
	logicalName, sourceComment, transRule string,
	isExtractionCondition bool,
) Column {
	return Column{
		id:                    id,
		mappingID:             mappingID,
		sourceColumn:          sourceColumn,
		sourceType:            sourceType,
		targetColumn:          targetColumn,
		targetType:            targetType,
		order:                 order,
		isPK:                  isPK,
		isNullable:            isNullable,
		isPartition:           isPartition,
		logicalName:           logicalName,
		sourceComment:         sourceComment,
		transRule:             transRule,
		isExtractionCondition: isExtractionCondition,
	}
}

// ID returns the column ID.
func (c Column) ID() int64 { return c.id }

// MappingID returns the owning mapping ID.
func (c Column) MappingID() int64 { return c.mappingID }

// SourceColumn returns the source column name or function token.
func (c Column) SourceColumn() string { return c.sourceColumn }

// SourceType returns the source type descriptor.
func (c Column) SourceType() string { return c.sourceType }

// TargetColumn returns the target column name.
func (c Column) TargetColumn() string { return c.targetColumn }

// TargetType returns the translated target type descriptor.
func (c Column) TargetType() string { return c.targetType }

// Order returns the 1-based column order.
func (c Column) Order() int { return c.order }

// IsPK reports whether the column is part of the primary key.
func (c Column) IsPK() bool { return c.isPK }

// IsNullable reports whether the column accepts NULL.
func (c Column) IsNullable() bool { return c.isNullable }

// IsPartition reports whether the column is a partition key.
func (c Column) IsPartition() bool { return c.isPartition }

// LogicalName returns the human-readable name.
func (c Column) LogicalName() string { return c.logicalName }

// SourceComment returns the source catalog comment.
func (c Column) SourceComment() string { return c.sourceComment }

// TransRule returns the free-text transformation rule.
func (c Column) TransRule() string { return c.transRule }

// IsExtractionCondition reports whether the column filters extraction.
func (c Column) IsExtractionCondition() bool { return c.isExtractionCondition }

// IsAudit reports whether the column is the synthetic load-time column.
func (c Column) IsAudit() bool { return c.sourceColumn == AuditSourceToken }

// WithID returns a copy with the given ID.
func (c Column) WithID(id int64) Column {
	c.id = id
	return c
}

// WithMappingID returns a copy bound to a mapping.
func (c Column) WithMappingID(id int64) Column {
	c.mappingID = id
	return c
}

// WithKeys returns a copy with the key and nullability flags set.
func (c Column) WithKeys(isPK, isNullable, isPartition bool) Column {
	c.isPK = isPK
	c.isNullable = isNullable
	c.isPartition = isPartition
	return c
}

// WithDescription returns a copy with the logical name and source comment set.
func (c Column) WithDescription(logicalName, sourceComment string) Column {
	c.logicalName = logicalName
	c.sourceComment = sourceComment
	return c
}

// WithTransform returns a copy with the transformation rule and extraction flag set.
func (c Column) WithTransform(transRule string, isExtractionCondition bool) Column {
	c.transRule = transRule
	c.isExtractionCondition = isExtractionCondition
	return c
}

// SortColumns returns a copy of columns ordered by Order ascending.
func SortColumns(columns []Column) []Column {
	sorted := make([]Column, len(columns))
	copy(sorted, columns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].order < sorted[j].order })
	return sorted
}

// ValidateColumns checks that orders are positive and unique, and that at
// most one audit column is present.
func ValidateColumns(columns []Column) error {
	seen := make(map[int]string, len(columns))
	audits := 0
	var errs []error
	for _, c := range columns {
		if c.order < 1 {
			errs = append(errs, fmt.Errorf("%w: %s has order %d", ErrInvalidColumnOrder, c.targetColumn, c.order))
			continue
		}
		if prev, ok := seen[c.order]; ok {
			errs = append(errs, fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateColumnOrder, c.order, prev, c.targetColumn))
			continue
		}
		seen[c.order] = c.targetColumn
		if c.IsAudit() {
			audits++
		}
	}
	if audits > 1 {
		errs = append(errs, fmt.Errorf("%d audit columns, at most one allowed", audits))
	}
	return errors.Join(errs...)
}
