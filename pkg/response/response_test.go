package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestErrorHidesWrappedCause(t *testing.T) {
	c, w := newContext()

	Error(c, appErrors.Wrap(assert.AnError, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var envelope map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "failed to list classes", envelope["error"]["message"])
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestListCountsItems(t *testing.T) {
	c, w := newContext()

	List(c, []string{"class-1", "class-2"}, 2)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":["class-1","class-2"],"meta":{"count":2}}`, w.Body.String())
}

func TestListKeepsEmptyCount(t *testing.T) {
	c, w := newContext()

	List(c, []string{}, 0)

	assert.JSONEq(t, `{"data":[],"meta":{"count":0}}`, w.Body.String())
}

func TestJSONOmitsMetaForSingleItems(t *testing.T) {
	c, w := newContext()

	JSON(c, http.StatusOK, map[string]string{"id": "sem-1"}, nil)

	assert.JSONEq(t, `{"data":{"id":"sem-1"}}`, w.Body.String())
}

func TestFile(t *testing.T) {
	c, w := newContext()

	File(c, "workload.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="workload.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
