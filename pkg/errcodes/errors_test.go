package errcodes

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Parallel()

	assert.True(t, HasCode(NotFound("Book"), CodeNotFound))
	assert.True(t, HasCode(errors.WithStack(Unavailable("Book")), CodeUnavailable))
	assert.True(t, HasCode(errors.Wrap(Duplicate("Member", "email"), "add member"), CodeDuplicate))
	assert.False(t, HasCode(NotFound("Book"), CodeUnavailable))
	assert.False(t, HasCode(errors.New("boom"), CodeStorage))
	assert.False(t, HasCode(nil, CodeNotFound))
}

func TestStorage(t *testing.T) {
	t.Parallel()

	t.Run("wraps plain errors", func(t *testing.T) {
		err := Storage(errors.New("disk I/O error"))
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeStorage))
		assert.Contains(t, err.Error(), "disk I/O error")
	})

	t.Run("keeps the cause reachable", func(t *testing.T) {
		err := Storage(errors.WithStack(sql.ErrConnDone))
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	t.Run("passes coded errors through", func(t *testing.T) {
		orig := errors.WithStack(NotFound("Member"))
		err := Storage(orig)
		assert.Equal(t, orig, err)
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Storage(nil))
	})
}

func TestMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Book not found.", NotFound("Book").Error())
	assert.Equal(t, "Member with this email already exists.", Duplicate("Member", "email").Error())
	assert.Equal(t, "Book is not available.", Unavailable("Book").Error())
}

func TestPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", ValidationError(`"days" must be greater than 0`), http.StatusUnprocessableEntity, CodeValidation},
		{"duplicate", Duplicate("Member", "email"), http.StatusConflict, CodeDuplicate},
		{"unavailable", errors.WithStack(Unavailable("Book")), http.StatusConflict, CodeUnavailable},
		{"not found", NotFound("Loan"), http.StatusNotFound, CodeNotFound},
		{"storage", Storage(errors.New("boom")), http.StatusInternalServerError, CodeStorage},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, "method_not_allowed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := Payload(tt.err)
			assert.Equal(t, tt.status, status)
			body := payload["error"].(map[string]interface{})
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.status, body["status_code"])
		})
	}
}

func TestPayload_HidesCause(t *testing.T) {
	t.Parallel()

	_, payload := Payload(Storage(errors.New("secret path /var/db")))
	body := payload["error"].(map[string]interface{})
	assert.Equal(t, "Storage error", body["message"])
}
