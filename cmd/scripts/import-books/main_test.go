package main

import (
	"testing"

	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRecords(t *testing.T) {
	t.Parallel()

	records := []bookRecord{
		{Title: " Dune ", Author: "Frank Herbert "},
		{Title: "   ", Author: "Nobody"},
		{Title: "Emma", Author: ""},
	}

	rejected := checkRecords(records)
	require.Len(t, rejected, 2)
	assert.Equal(t, 1, rejected[0].Index)
	assert.Equal(t, 2, rejected[1].Index)
	for _, r := range rejected {
		assert.True(t, errcodes.HasCode(r.Err, errcodes.CodeValidation))
	}

	assert.Equal(t, bookRecord{Title: "Dune", Author: "Frank Herbert"}, records[0])
}

func TestCheckRecords_AllValid(t *testing.T) {
	t.Parallel()

	assert.Empty(t, checkRecords([]bookRecord{{Title: "Dune", Author: "Frank Herbert"}}))
	assert.Empty(t, checkRecords(nil))
}
