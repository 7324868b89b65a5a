package migrations

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
		if db.Dialect().Name() == dialect.PG {
			pk = "BIGSERIAL PRIMARY KEY"
		}

		statements := []string{
			fmt.Sprintf(`
				CREATE TABLE books (
					id %s,
					title TEXT NOT NULL,
					author TEXT NOT NULL,
					available INTEGER NOT NULL DEFAULT 1 CHECK (available >= 0)
				)
			`, pk),
			fmt.Sprintf(`
				CREATE TABLE members (
					id %s,
					name TEXT NOT NULL,
					email TEXT NOT NULL
				)
			`, pk),
			`CREATE UNIQUE INDEX ux_members_email ON members (lower(email))`,
			fmt.Sprintf(`
				CREATE TABLE borrows (
					id %s,
					book_id INTEGER NOT NULL REFERENCES books (id),
					member_id INTEGER NOT NULL REFERENCES members (id),
					borrow_date TIMESTAMPTZ NOT NULL,
					return_date TIMESTAMPTZ NOT NULL
				)
			`, pk),
			`CREATE INDEX ix_borrows_book_id ON borrows (book_id)`,
			`CREATE INDEX ix_borrows_member_id ON borrows (member_id)`,
		}

		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(ctx context.Context, db *bun.DB) error {
		for i := len(Tables) - 1; i >= 0; i-- {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+Tables[i]); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
