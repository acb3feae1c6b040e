package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	req := require.New(t)
	rec := httptest.NewRecorder()

	Success(rec, map[string]int{"clients": 2})

	req.Equal(http.StatusOK, rec.Code)
	req.Equal("application/json", rec.Header().Get("Content-Type"))
	req.JSONEq(`{"success":true,"data":{"clients":2}}`, rec.Body.String())
}

func TestErrors(t *testing.T) {
	req := require.New(t)

	rec := httptest.NewRecorder()
	NotFound(rec, "node registry is disabled")
	req.Equal(http.StatusNotFound, rec.Code)

	var body Response
	req.NoError(json.NewDecoder(rec.Body).Decode(&body))
	req.False(body.Success)
	req.Equal("NOT_FOUND", body.Error.Code)
	req.Equal("node registry is disabled", body.Error.Message)

	rec = httptest.NewRecorder()
	InternalError(rec, "failed")
	req.Equal(http.StatusInternalServerError, rec.Code)
	req.Contains(rec.Body.String(), "INTERNAL_ERROR")
}
