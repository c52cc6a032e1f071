package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/internal/database"
	"gorm.io/gorm"
)

// ConnectionStore implements connection.Store using GORM.
type ConnectionStore struct {
	database.Repository[connection.Connection, ConnectionModel]
}

// NewConnectionStore creates a new ConnectionStore.
func NewConnectionStore(db database.Database) ConnectionStore {
	return ConnectionStore{
		Repository: database.NewRepository[connection.Connection, ConnectionModel](db, ConnectionMapper{}, "connection"),
	}
}

// Save creates or updates a connection.
func (s ConnectionStore) Save(ctx context.Context, c connection.Connection) (connection.Connection, error) {
	model := s.Mapper().ToModel(c)

	var result *gorm.DB
	if c.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}
	if result.Error != nil {
		return connection.Connection{}, fmt.Errorf("save connection: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a connection.
func (s ConnectionStore) Delete(ctx context.Context, c connection.Connection) error {
	model := s.Mapper().ToModel(c)
	if err := s.DB(ctx).Delete(&model).Error; err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	return nil
}
