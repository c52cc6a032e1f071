package service

import (
	"context"
	"testing"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnections_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conn, err := f.connections.Create(ctx, ConnectionParams{Name: "  stage ", Type: " PostgreSQL ", Port: 5432})
	require.NoError(t, err)
	assert.Equal(t, "stage", conn.Name())
	assert.Equal(t, "postgresql", conn.Kind())

	all, err := f.connections.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := f.connections.Find(ctx, connection.WithName("stage"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, conn.ID(), found[0].ID())
}

func TestConnections_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []ConnectionParams{
		{Type: "oracle"},
		{Name: "x"},
		{Name: "x", Type: "oracle", Port: -1},
	}
	for _, params := range cases {
		_, err := f.connections.Create(ctx, params)
		assert.ErrorIs(t, err, ErrValidation, "%+v", params)
	}
}

func TestConnections_Tables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tables, err := f.connections.Tables(ctx, f.source.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"HR.DEPT", "HR.EMP", "HR.JOBS"}, tables)

	_, err = f.connections.Tables(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestConnections_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.connections.Delete(ctx, f.target.ID()))
	assert.ErrorIs(t, f.connections.Delete(ctx, f.target.ID()), database.ErrNotFound)
}
