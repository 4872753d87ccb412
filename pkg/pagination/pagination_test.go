package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestParseDefaults(t *testing.T) {
	params := Parse(newTestContext(""))
	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultLimit, params.Limit)
	assert.Equal(t, 0, params.Offset)
}

func TestParseComputesOffset(t *testing.T) {
	params := Parse(newTestContext("page=3&limit=10"))
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Offset)
}

func TestParseClampsLimit(t *testing.T) {
	params := Parse(newTestContext("limit=5000"))
	assert.Equal(t, MaxLimit, params.Limit)
}

func TestParseRecoversFromGarbage(t *testing.T) {
	params := Parse(newTestContext("page=-2&limit=abc"))
	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultLimit, params.Limit)
}

func TestParseSort(t *testing.T) {
	column, direction := ParseSort(newTestContext("sort_by=amount&sort_dir=asc"))
	assert.Equal(t, "amount", column)
	assert.Equal(t, "asc", direction)
}

func TestParseSortCoercesBadDirection(t *testing.T) {
	column, direction := ParseSort(newTestContext("sort_by=amount&sort_dir=upwards"))
	assert.Equal(t, "amount", column)
	assert.Equal(t, "desc", direction)
}

func TestParseSortEmptyColumn(t *testing.T) {
	column, direction := ParseSort(newTestContext(""))
	assert.Empty(t, column)
	assert.Equal(t, "desc", direction)
}
