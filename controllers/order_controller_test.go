package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"order-service/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, rawQuery string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/orders?"+rawQuery, nil)
	c.Request = req
	return c, w
}

func TestParsePaginationParams(t *testing.T) {
	c, _ := testContext(t, "page=3&limit=25")
	page, limit := parsePaginationParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	c, _ = testContext(t, "")
	page, limit = parsePaginationParams(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	c, _ = testContext(t, "page=abc&limit=xyz")
	page, limit = parsePaginationParams(c)
	assert.Equal(t, 0, page)
	assert.Equal(t, 0, limit)
}

func TestParseOrderFilter(t *testing.T) {
	c, _ := testContext(t, "status=Shipped&from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z")
	filter, ok := parseOrderFilter(c)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusShipped, filter.Status)
	require.NotNil(t, filter.StartDate)
	require.NotNil(t, filter.EndDate)
	assert.True(t, filter.StartDate.Before(*filter.EndDate))
}

func TestParseOrderFilter_RejectsUnknownStatus(t *testing.T) {
	c, w := testContext(t, "status=Misplaced")
	_, ok := parseOrderFilter(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseOrderFilter_RejectsBadDates(t *testing.T) {
	c, w := testContext(t, "from=yesterday")
	_, ok := parseOrderFilter(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallbackParam_PrefersFormOverQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	form := url.Values{}
	form.Set("txnid", "TEMP-1-0001")
	c.Request = httptest.NewRequest(http.MethodPost, "/payments/callback?txnid=TEMP-9-9999&status=success",
		strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// the posted field wins, query fills in what the body lacks
	assert.Equal(t, "TEMP-1-0001", callbackParam(c, "txnid"))
	assert.Equal(t, "success", callbackParam(c, "status"))
}
