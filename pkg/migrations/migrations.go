package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// Tables lists the lending tables in the order they're created. Borrows
// reference the other two, so they're dropped in reverse.
var Tables = []string{"books", "members", "borrows"}

type TableCount struct {
	Table string
	Rows  int
}

// CountRows returns the number of rows in each lending table.
func CountRows(ctx context.Context, db bun.IDB) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		n, err := db.NewSelect().Table(table).Count(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to count %s", table)
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}

func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	err := migrator.Init(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}
