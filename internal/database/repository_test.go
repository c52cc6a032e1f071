package database

import (
	"context"
	"testing"

	"github.com/helixml/dagforge/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widgetModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:name"`
	Rank int    `gorm:"column:weight"`
}

func (widgetModel) TableName() string { return "widgets" }

type widget struct {
	id   int64
	name string
	rank int
}

type widgetMapper struct{}

func (widgetMapper) ToDomain(e widgetModel) widget {
	return widget{id: e.ID, name: e.Name, rank: e.Rank}
}

func (widgetMapper) ToModel(d widget) widgetModel {
	return widgetModel{ID: d.id, Name: d.name, Rank: d.rank}
}

func newWidgetRepo(t *testing.T) Repository[widget, widgetModel] {
	t.Helper()
	db, _ := openFileDB(t)
	require.NoError(t, db.GORM().AutoMigrate(&widgetModel{}))
	ctx := context.Background()
	for i, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, db.Session(ctx).Create(&widgetModel{Name: name, Rank: 3 - i}).Error)
	}
	return NewRepository[widget, widgetModel](db, widgetMapper{}, "widget")
}

func TestRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := newWidgetRepo(t)

	all, err := repo.Find(ctx, repository.WithOrderAsc("weight"))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "gamma", all[0].name)

	some, err := repo.Find(ctx, repository.WithConditionIn("name", []string{"alpha", "beta"}))
	require.NoError(t, err)
	assert.Len(t, some, 2)

	raw, err := repo.Find(ctx, repository.WithWhere("weight >= ?", 2))
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}

func TestRepository_FindOne_NotFound(t *testing.T) {
	repo := newWidgetRepo(t)

	_, err := repo.FindOne(context.Background(), repository.WithID(999))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_CountExistsDelete(t *testing.T) {
	ctx := context.Background()
	repo := newWidgetRepo(t)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ok, err := repo.Exists(ctx, repository.WithCondition("name", "beta"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.DeleteBy(ctx, repository.WithCondition("name", "beta")))
	ok, err = repo.Exists(ctx, repository.WithCondition("name", "beta"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_DeleteByRequiresCondition(t *testing.T) {
	ctx := context.Background()
	repo := newWidgetRepo(t)

	assert.Error(t, repo.DeleteBy(ctx))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
