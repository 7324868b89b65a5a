package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Borrow struct {
	bun.BaseModel `bun:"table:borrows,alias:br"`

	ID         int       `bun:",pk,autoincrement" json:"id"`
	BookID     int       `bun:",notnull" json:"book_id"`
	Book       *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	MemberID   int       `bun:",notnull" json:"member_id"`
	Member     *Member   `bun:"rel:belongs-to,join:member_id=id" json:"member,omitempty"`
	BorrowDate time.Time `bun:",notnull" json:"borrow_date"`
	ReturnDate time.Time `bun:",notnull" json:"return_date"`
}
