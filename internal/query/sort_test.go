package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFlipsActiveColumn(t *testing.T) {
	s := Sort{Column: "created_date", Direction: Desc}

	s = Toggle(s, "created_date")
	assert.Equal(t, Sort{Column: "created_date", Direction: Asc}, s)

	s = Toggle(s, "created_date")
	assert.Equal(t, Sort{Column: "created_date", Direction: Desc}, s)
}

func TestToggleNewColumnStartsDescending(t *testing.T) {
	s := Toggle(Sort{Column: "created_date", Direction: Asc}, "amount")
	assert.Equal(t, Sort{Column: "amount", Direction: Desc}, s)
}

func TestOrderClauseFallsBackWhenUnset(t *testing.T) {
	clause, err := Sort{}.OrderClause(requestColumns, "requests.created_date DESC")
	require.NoError(t, err)
	assert.Equal(t, "requests.created_date DESC", clause)
}

func TestOrderClauseResolvesWhitelistedColumn(t *testing.T) {
	clause, err := Sort{Column: "status", Direction: Asc}.OrderClause(requestColumns, "")
	require.NoError(t, err)
	assert.Equal(t, "requests.status asc", clause)
}

func TestOrderClauseCoercesBadDirection(t *testing.T) {
	clause, err := Sort{Column: "status", Direction: Direction("sideways")}.OrderClause(requestColumns, "")
	require.NoError(t, err)
	assert.Equal(t, "requests.status desc", clause)
}

func TestOrderClauseRejectsUnknownColumn(t *testing.T) {
	_, err := Sort{Column: "secret", Direction: Asc}.OrderClause(requestColumns, "")
	assert.ErrorContains(t, err, "not allowed")
}
