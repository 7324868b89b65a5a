package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Name  string `json:"name" mod:"trim" validate:"nonblank,max=9"`
	Email string `json:"email" mod:"trim" validate:"required,contains=@"`
	Omit  string `json:"-"`
}

type query struct {
	Search   string `query:"search" mod:"trim"`
	MemberID int    `query:"member_id" validate:"omitempty,min=1"`
	Days     int    `query:"days" default:"14"`
}

func TestBind_JSON(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	t.Run("only allows application/json", func(t *testing.T) {
		c := newContext(http.MethodPost, "/", `{"name":"ann"}`, echo.MIMEApplicationXML)
		err := b.Bind(&params{}, c)
		assert.Contains(t, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(t *testing.T) {
		c := newContext(http.MethodPost, "/", `{"name":"ann","email":"a@b","foo":"bar"}`, echo.MIMEApplicationJSON)
		err := b.Bind(&params{}, c)
		assert.Contains(t, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(t *testing.T) {
		c := newContext(http.MethodPost, "/", `{"name":123}`, echo.MIMEApplicationJSON)
		err := b.Bind(&params{}, c)
		assert.Contains(t, err.Error(), `"name" should be of type string`)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		c := newContext(http.MethodPost, "/", `{"name":`, echo.MIMEApplicationJSON)
		err := b.Bind(&params{}, c)
		assert.ErrorIs(t, err, errcodes.MalformedPayload())
	})

	t.Run("trims before validating", func(t *testing.T) {
		c := newContext(http.MethodPost, "/", `{"name":" ann ","email":" ann@example.com "}`, echo.MIMEApplicationJSON)
		p := params{}
		require.NoError(t, b.Bind(&p, c))
		assert.Equal(t, "ann", p.Name)
		assert.Equal(t, "ann@example.com", p.Email)
	})

	t.Run("whitespace-only values are blank", func(t *testing.T) {
		c := newContext(http.MethodPost, "/", `{"name":"   ","email":"a@b"}`, echo.MIMEApplicationJSON)
		err := b.Bind(&params{}, c)
		assert.True(t, errcodes.HasCode(err, errcodes.CodeValidation))
		assert.Contains(t, err.Error(), `"name" is required`)
	})

	t.Run("validates with the json field name", func(t *testing.T) {
		c := newContext(http.MethodPost, "/", `{"name":"ann","email":"nope"}`, echo.MIMEApplicationJSON)
		err := b.Bind(&params{}, c)
		assert.Contains(t, err.Error(), `"email" must contain "@"`)
	})

	t.Run("requires a body on writes", func(t *testing.T) {
		c := newContext(http.MethodPost, "/", "", echo.MIMEApplicationJSON)
		err := b.Bind(&params{}, c)
		assert.ErrorIs(t, err, errcodes.EmptyRequestBody())
	})
}

func TestBind_Query(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)

	t.Run("decodes query params and applies defaults", func(t *testing.T) {
		c := newContext(http.MethodGet, "/?search=+dune+&member_id=3", "", "")
		q := query{}
		require.NoError(t, b.Bind(&q, c))
		assert.Equal(t, "dune", q.Search)
		assert.Equal(t, 3, q.MemberID)
		assert.Equal(t, 14, q.Days)
	})

	t.Run("reports conversion errors", func(t *testing.T) {
		c := newContext(http.MethodGet, "/?member_id=abc", "", "")
		err := b.Bind(&query{}, c)
		assert.True(t, errcodes.HasCode(err, "validation_type_error"))
		assert.Contains(t, err.Error(), `"member_id"`)
	})

	t.Run("reports unknown params", func(t *testing.T) {
		c := newContext(http.MethodGet, "/?color=red", "", "")
		err := b.Bind(&query{}, c)
		assert.Contains(t, err.Error(), `Unknown Parameter "color"`)
	})
}

func newContext(method, target, payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if mime != "" {
		req.Header.Set(echo.HeaderContentType, mime)
	}
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
