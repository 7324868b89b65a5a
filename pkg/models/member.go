package models

import (
	"github.com/uptrace/bun"
)

type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID    int    `bun:",pk,autoincrement" json:"id"`
	Name  string `bun:",notnull" json:"name"`
	Email string `bun:",notnull" json:"email"`
}

// MemberSummary is the part of a member that is shown next to a loan.
type MemberSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
