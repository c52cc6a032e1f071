package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_CollectsOptionsInOrder(t *testing.T) {
	q := Build(
		WithID(7),
		WithConditionIn("status", []string{"draft", "generated"}),
		WithWhere("created_at > ?", "2024-01-01"),
		WithOrderAsc("column_order"),
		WithOrderDesc("id"),
		WithLimit(10),
		WithOffset(20),
	)

	conds := q.Conditions()
	assert.Len(t, conds, 3)
	assert.Equal(t, "id", conds[0].Field())
	assert.Equal(t, int64(7), conds[0].Value())
	assert.False(t, conds[0].In())
	assert.True(t, conds[1].In())
	assert.True(t, conds[2].Raw())
	assert.Equal(t, []any{"2024-01-01"}, conds[2].Args())

	orders := q.Orders()
	assert.Len(t, orders, 2)
	assert.True(t, orders[0].Ascending())
	assert.False(t, orders[1].Ascending())

	assert.Equal(t, 10, q.LimitValue())
	assert.Equal(t, 20, q.OffsetValue())
}

func TestQuery_ConditionsIsACopy(t *testing.T) {
	q := Build(WithID(1))
	conds := q.Conditions()
	conds[0] = Condition{field: "mutated"}

	assert.Equal(t, "id", q.Conditions()[0].Field())
}

func TestCondition_String(t *testing.T) {
	assert.Equal(t, "id = 3", Build(WithID(3)).Conditions()[0].String())
	assert.Equal(t, "id IN [1 2]", Build(WithIDIn([]int64{1, 2})).Conditions()[0].String())
}

func TestWithPagination(t *testing.T) {
	q := Build(WithPagination(5, 15)...)
	assert.Equal(t, 5, q.LimitValue())
	assert.Equal(t, 15, q.OffsetValue())
}
