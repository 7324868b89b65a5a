package books

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type SearchBooksOptions struct {
	Query string
	// AvailableOnly restricts the search to books with a copy on the shelf and
	// matches the query against the title only. Without it, the query is
	// matched against both title and author.
	AvailableOnly bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// NormalizeBook trims title and author and checks that neither is blank.
// AddBook applies it, and importers use it to check records up front.
func NormalizeBook(title, author string) (string, string, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return "", "", errcodes.ValidationError(`"title" is required`)
	}
	if author == "" {
		return "", "", errcodes.ValidationError(`"author" is required`)
	}
	return title, author, nil
}

func (svc *Service) AddBook(ctx context.Context, title, author string) (*models.Book, error) {
	title, author, err := NormalizeBook(title, author)
	if err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:     title,
		Author:    author,
		Available: 1,
	}
	_, err = svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errcodes.Storage(errors.WithStack(err))
	}

	logger.FromContext(ctx).Info("book added", logger.Data{"book_id": book.ID})

	return book, nil
}

func (svc *Service) RetrieveBook(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}
	err := svc.db.
		NewSelect().
		Model(book).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errcodes.Storage(errors.WithStack(err))
	}
	return book, nil
}

func (svc *Service) SearchBooks(ctx context.Context, opts SearchBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.id ASC")

	query := strings.TrimSpace(opts.Query)
	pattern := ContainsPattern(query)

	if opts.AvailableOnly {
		q = q.Where("b.available > 0")
		if query != "" {
			q = q.Where("lower(b.title) LIKE lower(?) ESCAPE '!'", pattern)
		}
	} else if query != "" {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(b.title) LIKE lower(?) ESCAPE '!'", pattern).
				WhereOr("lower(b.author) LIKE lower(?) ESCAPE '!'", pattern)
		})
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errcodes.Storage(errors.WithStack(err))
	}
	return books, nil
}

// AdjustAvailability moves the available count of a book by delta inside tx.
// It only takes a transaction so that the change is always committed together
// with the borrow row it pairs with. The update is guarded so the count can't
// drop below zero even if the caller's earlier read is stale.
func AdjustAvailability(ctx context.Context, tx bun.Tx, bookID, delta int) error {
	res, err := tx.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("available = available + ?", delta).
		Where("id = ?", bookID).
		Where("available + ? >= 0", delta).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		if delta < 0 {
			return errcodes.Unavailable("Book")
		}
		return errcodes.NotFound("Book")
	}
	return nil
}

// ContainsPattern builds a LIKE pattern that matches query anywhere in the
// column. Wildcards in query are escaped with '!' so they match literally.
func ContainsPattern(query string) string {
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(query)
	return "%" + escaped + "%"
}
