package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		check      func(error) bool
	}{
		{name: "not found", err: NotFound("Task", "t1"), wantStatus: http.StatusNotFound, check: IsNotFound},
		{name: "capacity", err: CapacityExceeded("full"), wantStatus: http.StatusConflict, check: IsCapacityExceeded},
		{name: "validation", err: Validation("bad input"), wantStatus: http.StatusBadRequest, check: IsValidation},
		{name: "unauthorized", err: Unauthorized("token revoked"), wantStatus: http.StatusUnauthorized, check: IsUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var e *Error
			assert.True(t, errors.As(tt.err, &e))
			assert.Equal(t, tt.wantStatus, e.Status)
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestErrorChecksOnWrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("handler: %w", NotFound("Goal", "g1"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsCapacityExceeded(wrapped))
}

func TestStoreKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Store("failed to create task", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to create task")
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("typed error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Abort(c, NotFound("Task", "t1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Task t1 not found","code":"NOT_FOUND"}`, w.Body.String())
	})

	t.Run("unknown error stays generic", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Abort(c, errors.New("pq: relation does not exist"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`, w.Body.String())
	})
}
