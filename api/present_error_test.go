package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerlookup/offer-backend/dto"
	"github.com/offerlookup/offer-backend/models"
)

func TestPresentError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"bad parameter", errors.Wrap(models.BadParameterError, "limit"), http.StatusBadRequest, dto.InvalidPayload},
		{"unsupported file", errors.Wrap(models.ErrUnsupportedFileType, "offers.pdf"), http.StatusBadRequest, dto.UnsupportedFileType},
		{"too large", models.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.FileTooLarge},
		{"terminal job", models.ErrJobAlreadyTerminal, http.StatusBadRequest, dto.JobAlreadyTerminal},
		{"unauthorized", models.UnAuthorizedError, http.StatusUnauthorized, dto.Unauthorized},
		{"forbidden", errors.Wrap(models.ForbiddenError, "not the owner"), http.StatusForbidden, dto.Forbidden},
		{"not found", errors.Wrap(models.NotFoundError, "job"), http.StatusNotFound, dto.NotFound},
		{"conflict", models.ConflictError, http.StatusConflict, dto.Conflict},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, dto.InternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			assert.True(t, presentError(c.Request.Context(), c, tt.err))

			assert.Equal(t, tt.status, w.Code)
			var body dto.APIErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.ErrorCode)
		})
	}
}

func TestPresentError_nil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.False(t, presentError(c.Request.Context(), c, nil))
	assert.Equal(t, 0, w.Body.Len())
}
