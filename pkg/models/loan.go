package models

import (
	"time"
)

// Loan is the read model of an outstanding borrow joined with its book and
// the borrowing member.
type Loan struct {
	ID          int       `bun:"id" json:"id"`
	BookID      int       `bun:"book_id" json:"book_id"`
	BookTitle   string    `bun:"book_title" json:"book_title"`
	BookAuthor  string    `bun:"book_author" json:"book_author"`
	MemberID    int       `bun:"member_id" json:"member_id"`
	MemberName  string    `bun:"member_name" json:"member_name"`
	MemberEmail string    `bun:"member_email" json:"member_email"`
	BorrowDate  time.Time `bun:"borrow_date" json:"borrow_date"`
	ReturnDate  time.Time `bun:"return_date" json:"return_date"`
}

// IsOverdue reports whether the due date has passed at now. Overdue loans are
// only flagged for display; nothing is enforced.
func (l *Loan) IsOverdue(now time.Time) bool {
	return now.After(l.ReturnDate)
}
