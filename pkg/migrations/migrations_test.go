package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBringUpToDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	for _, table := range []string{"books", "members", "borrows"} {
		var n int
		err := db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(ctx, &n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}

	// Running again is a no-op.
	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)
}

func TestSchemaConstraints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	_, err := BringUpToDate(ctx, db)
	require.NoError(t, err)

	t.Run("books default to one available copy", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "INSERT INTO books (title, author) VALUES ('Dune', 'Herbert')")
		require.NoError(t, err)
		var available int
		require.NoError(t, db.NewRaw("SELECT available FROM books WHERE title = 'Dune'").Scan(ctx, &available))
		assert.Equal(t, 1, available)
	})

	t.Run("available can't go negative", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "INSERT INTO books (title, author, available) VALUES ('X', 'Y', -1)")
		assert.Error(t, err)
	})

	t.Run("emails are unique regardless of case", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "INSERT INTO members (name, email) VALUES ('Ann', 'ann@example.com')")
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, "INSERT INTO members (name, email) VALUES ('Ann 2', 'ANN@example.com')")
		assert.Error(t, err)
	})
}

func TestCountRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	_, err := CountRows(ctx, db)
	assert.Error(t, err, "tables don't exist before migrating")

	_, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO books (title, author) VALUES ('Dune', 'Herbert'), ('Emma', 'Austen')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO members (name, email) VALUES ('Ann', 'ann@example.com')")
	require.NoError(t, err)

	counts, err := CountRows(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []TableCount{
		{Table: "books", Rows: 2},
		{Table: "members", Rows: 1},
		{Table: "borrows", Rows: 0},
	}, counts)
}

func TestRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	_, err := BringUpToDate(ctx, db)
	require.NoError(t, err)

	migrator := migrate.NewMigrator(db, Migrations)
	group, err := migrator.Rollback(ctx)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	var n int
	require.NoError(t, db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'books'").Scan(ctx, &n))
	assert.Zero(t, n)
}
