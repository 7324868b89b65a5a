package lending

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/books"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// MaxLoanDays is the longest loan that can be taken out. Due dates must stay
// within what the store can read back.
const MaxLoanDays = 3650

type ListOutstandingOptions struct {
	// Query matches the book title case-insensitively.
	Query    string
	MemberID int

	bookID int
}

type BorrowResult struct {
	Borrow    *models.Borrow `json:"borrow"`
	Available int            `json:"available"`
}

type ReturnResult struct {
	BookID     int            `json:"book_id"`
	Loans      []*models.Loan `json:"loans"`
	Available  int            `json:"available"`
	ReturnedAt time.Time      `json:"returned_at"`
}

type Service struct {
	db  *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// DueDate is the date a loan of the given number of days taken out at from is
// due back. Calendar days are added, so the time of day is kept.
func DueDate(from time.Time, days int) time.Time {
	return from.AddDate(0, 0, days)
}

// Borrow lends one copy of a book to a member for the given number of days.
// The availability check, the decrement and the new borrow row are committed
// together, and nothing is written when any of them fails.
func (svc *Service) Borrow(ctx context.Context, bookID, memberID, days int) (*BorrowResult, error) {
	if err := validatePositive("book_id", bookID); err != nil {
		return nil, err
	}
	if err := validatePositive("member_id", memberID); err != nil {
		return nil, err
	}
	if err := validateDays(days); err != nil {
		return nil, err
	}

	// Stored timestamps keep microseconds, so truncate up front to hand back
	// exactly what a later read returns.
	now := svc.now().UTC().Truncate(time.Microsecond)
	borrow := &models.Borrow{
		BookID:     bookID,
		MemberID:   memberID,
		BorrowDate: now,
		ReturnDate: DueDate(now, days),
	}
	result := &BorrowResult{Borrow: borrow}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		book := &models.Book{}
		q := tx.
			NewSelect().
			Model(book).
			Where("b.id = ?", bookID)
		// SQLite already serializes writers through the single connection.
		if tx.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}

		exists, err := tx.
			NewSelect().
			Model((*models.Member)(nil)).
			Where("m.id = ?", memberID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Member")
		}

		if !book.IsAvailable() {
			return errcodes.Unavailable("Book")
		}

		if err := books.AdjustAvailability(ctx, tx, bookID, -1); err != nil {
			return err
		}

		_, err = tx.
			NewInsert().
			Model(borrow).
			Returning("id").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		result.Available = book.Available - 1
		return nil
	})
	if err != nil {
		return nil, errcodes.Storage(err)
	}

	logger.FromContext(ctx).Info("book borrowed", logger.Data{
		"book_id":     bookID,
		"member_id":   memberID,
		"borrow_id":   borrow.ID,
		"return_date": borrow.ReturnDate,
	})

	return result, nil
}

// Return takes a book back. Every outstanding borrow of the book is removed
// and the available count goes up by exactly one, since each book starts out
// with a single copy.
func (svc *Service) Return(ctx context.Context, bookID int) (*ReturnResult, error) {
	if err := validatePositive("book_id", bookID); err != nil {
		return nil, err
	}

	result := &ReturnResult{
		BookID:     bookID,
		ReturnedAt: svc.now().UTC(),
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		loans, err := scanOutstanding(ctx, tx, ListOutstandingOptions{bookID: bookID})
		if err != nil {
			return err
		}

		res, err := tx.
			NewDelete().
			Model((*models.Borrow)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if n == 0 {
			return errcodes.NotFound("Loan")
		}

		if err := books.AdjustAvailability(ctx, tx, bookID, 1); err != nil {
			return err
		}

		err = tx.
			NewSelect().
			Model((*models.Book)(nil)).
			Column("available").
			Where("b.id = ?", bookID).
			Scan(ctx, &result.Available)
		if err != nil {
			return errors.WithStack(err)
		}

		result.Loans = loans
		return nil
	})
	if err != nil {
		return nil, errcodes.Storage(err)
	}

	logger.FromContext(ctx).Info("book returned", logger.Data{
		"book_id":   bookID,
		"loans":     len(result.Loans),
		"available": result.Available,
	})

	return result, nil
}

// ListOutstanding returns every active loan joined with its book and member,
// ordered by when it was taken out.
func (svc *Service) ListOutstanding(ctx context.Context, opts ListOutstandingOptions) ([]*models.Loan, error) {
	if opts.MemberID < 0 {
		return nil, errcodes.ValidationError(`"member_id" must be greater than 0`)
	}
	loans, err := scanOutstanding(ctx, svc.db, opts)
	if err != nil {
		return nil, errcodes.Storage(err)
	}
	return loans, nil
}

// scanOutstanding runs the loan join as a single statement so the rows come
// from one snapshot of the three tables.
func scanOutstanding(ctx context.Context, db bun.IDB, opts ListOutstandingOptions) ([]*models.Loan, error) {
	loans := []*models.Loan{}

	q := db.
		NewSelect().
		TableExpr("borrows AS br").
		Join("JOIN books AS b ON b.id = br.book_id").
		Join("JOIN members AS m ON m.id = br.member_id").
		ColumnExpr("br.id, br.book_id, br.member_id, br.borrow_date, br.return_date").
		ColumnExpr("b.title AS book_title, b.author AS book_author").
		ColumnExpr("m.name AS member_name, m.email AS member_email").
		OrderExpr("br.id ASC")

	if query := strings.TrimSpace(opts.Query); query != "" {
		q = q.Where("lower(b.title) LIKE lower(?) ESCAPE '!'", books.ContainsPattern(query))
	}
	if opts.MemberID > 0 {
		q = q.Where("br.member_id = ?", opts.MemberID)
	}
	if opts.bookID > 0 {
		q = q.Where("br.book_id = ?", opts.bookID)
	}

	if err := q.Scan(ctx, &loans); err != nil {
		return nil, errors.WithStack(err)
	}
	return loans, nil
}

func validateDays(days int) error {
	if err := validatePositive("days", days); err != nil {
		return err
	}
	if days > MaxLoanDays {
		return errcodes.ValidationError(fmt.Sprintf(`"days" must be %d or less`, MaxLoanDays))
	}
	return nil
}

func validatePositive(field string, v int) error {
	if v <= 0 {
		return errcodes.ValidationError(`"` + field + `" must be greater than 0`)
	}
	return nil
}
