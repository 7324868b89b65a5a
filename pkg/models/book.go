package models

import (
	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID     int    `bun:",pk,autoincrement" json:"id"`
	Title  string `bun:",notnull" json:"title"`
	Author string `bun:",notnull" json:"author"`
	// Available is the number of copies on the shelf. It's 1 for a new book,
	// drops by one per borrow and rises by one per return.
	Available int `bun:",notnull" json:"available"`
}

// IsAvailable reports whether at least one copy can be lent out.
func (b *Book) IsAvailable() bool {
	return b.Available > 0
}
