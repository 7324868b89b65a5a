package testutils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shishobooks/circulation/pkg/migrations"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// NewDB returns a migrated in-memory database that is closed when the test
// ends. The pool is limited to one connection so every query sees the same
// in-memory database.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// InsertBook stores a book row directly, bypassing any service validation.
func InsertBook(t *testing.T, db bun.IDB, title, author string, available int) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, Author: author, Available: available}
	_, err := db.NewInsert().Model(book).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return book
}

// InsertMember stores a member row directly.
func InsertMember(t *testing.T, db bun.IDB, name, email string) *models.Member {
	t.Helper()
	member := &models.Member{Name: name, Email: email}
	_, err := db.NewInsert().Model(member).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return member
}

// Available reads the current available count of a book.
func Available(t *testing.T, db bun.IDB, bookID int) int {
	t.Helper()
	var available int
	err := db.NewSelect().
		Model((*models.Book)(nil)).
		Column("available").
		Where("b.id = ?", bookID).
		Scan(context.Background(), &available)
	require.NoError(t, err)
	return available
}

// CountBorrows returns how many borrow rows exist for a book.
func CountBorrows(t *testing.T, db bun.IDB, bookID int) int {
	t.Helper()
	n, err := db.NewSelect().
		Model((*models.Borrow)(nil)).
		Where("br.book_id = ?", bookID).
		Count(context.Background())
	require.NoError(t, err)
	return n
}
