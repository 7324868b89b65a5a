package lending

import (
	"testing"

	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDays(t *testing.T) {
	t.Parallel()

	days, err := ParseDays(" 14 ")
	require.NoError(t, err)
	assert.Equal(t, 14, days)

	days, err = ParseDays("3650")
	require.NoError(t, err)
	assert.Equal(t, MaxLoanDays, days)

	for _, raw := range []string{"", "  ", "0", "-1", "two", "1.5", "7d", "3651", "10000000"} {
		_, err := ParseDays(raw)
		assert.True(t, errcodes.HasCode(err, errcodes.CodeValidation), "raw %q gave %v", raw, err)
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := ParseID("book_id", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = ParseID("book_id", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"book_id"`)
}
