package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requestColumns = map[string]string{
	"status":       "requests.status",
	"form_id":      "requests.form_id",
	"title":        "requests.title",
	"created_date": "requests.created_date",
}

func TestBuildEmptyFilter(t *testing.T) {
	clause, args, err := Filter{}.Build(requestColumns)
	require.NoError(t, err)
	assert.Empty(t, clause)
	assert.Nil(t, args)
}

func TestBuildCombinesConditionsWithAnd(t *testing.T) {
	f := Filter{Conditions: []Condition{
		In("status", "PENDING", "APPROVED"),
		Contains("title", "chair"),
		Gte("created_date", "2026-01-01"),
		Lte("created_date", "2026-02-01"),
	}}

	clause, args, err := f.Build(requestColumns)
	require.NoError(t, err)
	assert.Equal(t, "requests.status IN ? AND requests.title ILIKE ? AND requests.created_date >= ? AND requests.created_date <= ?", clause)
	require.Len(t, args, 4)
	assert.Equal(t, []interface{}{"PENDING", "APPROVED"}, args[0])
	assert.Equal(t, "%chair%", args[1])
	assert.Equal(t, "2026-01-01", args[2])
	assert.Equal(t, "2026-02-01", args[3])
}

func TestBuildEqAndNotEq(t *testing.T) {
	f := Filter{Conditions: []Condition{
		Eq("form_id", "abc"),
		{Column: "status", Op: OpNotEq, Values: []interface{}{"CANCELED"}},
	}}

	clause, args, err := f.Build(requestColumns)
	require.NoError(t, err)
	assert.Equal(t, "requests.form_id = ? AND requests.status <> ?", clause)
	assert.Equal(t, []interface{}{"abc", "CANCELED"}, args)
}

func TestBuildEscapesLikeWildcards(t *testing.T) {
	f := Filter{Conditions: []Condition{Contains("title", `100%_done\`)}}

	_, args, err := f.Build(requestColumns)
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, `%100\%\_done\\%`, args[0])
}

func TestBuildRejectsUnknownColumn(t *testing.T) {
	f := Filter{Conditions: []Condition{Eq("password", "x")}}

	_, _, err := f.Build(requestColumns)
	assert.ErrorContains(t, err, "not allowed")
}

func TestBuildRejectsEmptyValues(t *testing.T) {
	f := Filter{Conditions: []Condition{{Column: "status", Op: OpIn}}}

	_, _, err := f.Build(requestColumns)
	assert.ErrorContains(t, err, "no values")
}

func TestBuildRejectsNonStringContains(t *testing.T) {
	f := Filter{Conditions: []Condition{{Column: "title", Op: OpContains, Values: []interface{}{42}}}}

	_, _, err := f.Build(requestColumns)
	assert.ErrorContains(t, err, "requires a string")
}

func TestBuildRejectsUnknownOperator(t *testing.T) {
	f := Filter{Conditions: []Condition{{Column: "status", Op: Operator("like"), Values: []interface{}{"x"}}}}

	_, _, err := f.Build(requestColumns)
	assert.ErrorContains(t, err, "unknown operator")
}
