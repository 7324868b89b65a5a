package members

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMember(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db)

	member, err := svc.AddMember(ctx, "  Ann Smith ", " ann@example.com ")
	require.NoError(t, err)
	assert.NotZero(t, member.ID)
	assert.Equal(t, "Ann Smith", member.Name)
	assert.Equal(t, "ann@example.com", member.Email)

	stored, err := svc.RetrieveMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, member, stored)
}

func TestAddMember_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db)

	tests := []struct {
		name  string
		mName string
		email string
	}{
		{"empty name", "", "a@b.com"},
		{"whitespace name", "   ", "a@b.com"},
		{"empty email", "Ann", ""},
		{"whitespace email", "Ann", "  "},
		{"email without at", "Ann", "ann.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddMember(ctx, tt.mName, tt.email)
			assert.True(t, errcodes.HasCode(err, errcodes.CodeValidation), "got %v", err)
		})
	}

	members, err := svc.ListMembers(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestAddMember_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db)

	_, err := svc.AddMember(ctx, "A", "x@y.com")
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, "B", "x@y.com")
	assert.ErrorIs(t, err, errcodes.Duplicate("Member", "email"))

	_, err = svc.AddMember(ctx, "C", "X@Y.COM")
	assert.True(t, errcodes.HasCode(err, errcodes.CodeDuplicate))

	members, err := svc.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Equal(t, "A", members[0].Name)
}

func TestListMembers_InsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db)

	for _, name := range []string{"Zed", "Amy", "Mo"} {
		_, err := svc.AddMember(ctx, name, name+"@example.com")
		require.NoError(t, err)
	}

	members, err := svc.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"Zed", "Amy", "Mo"}, []string{members[0].Name, members[1].Name, members[2].Name})
	assert.IsType(t, &models.MemberSummary{}, members[0])
	assert.Less(t, members[0].ID, members[1].ID)
}

func TestRetrieveMember_NotFound(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)

	_, err := svc.RetrieveMember(context.Background(), 7)
	assert.ErrorIs(t, err, errcodes.NotFound("Member"))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(assert.AnError))
	assert.True(t, isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: index 'ux_members_email' (2067)")))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "ux_members_email"`})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503", Message: "insert or update violates foreign key constraint"}))
	// A PostgreSQL error is judged by its code, never by its text.
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23514", Message: "UNIQUE constraint failed"}))
}
