package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationForQuery(t *testing.T, query string) *Pagination {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/gift-cards"+query, nil)
	return NewPagination(c)
}

func TestNewPagination_ParsesQueryParameters(t *testing.T) {
	p := paginationForQuery(t, "?page=3&limit=20")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 40, p.Offset)
}

func TestNewPagination_FallsBackOnBadInput(t *testing.T) {
	p := paginationForQuery(t, "")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = paginationForQuery(t, "?page=-4&limit=abc")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
}

func TestNewPagination_ClampsOversizedLimit(t *testing.T) {
	p := paginationForQuery(t, "?page=1&limit=500")
	assert.Equal(t, MaxPaginationLimit, p.Limit)
}

func TestPaginationSetTotal(t *testing.T) {
	p := &Pagination{Page: 2, Limit: 10}
	p.SetTotal(25)

	assert.EqualValues(t, 25, p.Total)
	assert.Equal(t, 3, p.LastPage)

	p.SetTotal(0)
	assert.Equal(t, 0, p.LastPage)
}
