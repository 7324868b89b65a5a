package members

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// AddMember registers a new member. Emails are compared case-insensitively,
// so "Ann@Example.com" and "ann@example.com" can't both be registered.
func (svc *Service) AddMember(ctx context.Context, name, email string) (*models.Member, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, errcodes.ValidationError(`"name" is required`)
	}
	if email == "" {
		return nil, errcodes.ValidationError(`"email" is required`)
	}
	if !strings.Contains(email, "@") {
		return nil, errcodes.ValidationError(`"email" must contain "@"`)
	}

	member := &models.Member{Name: name, Email: email}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.
			NewSelect().
			Model((*models.Member)(nil)).
			Where("lower(m.email) = lower(?)", email).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Duplicate("Member", "email")
		}

		_, err = tx.
			NewInsert().
			Model(member).
			Returning("*").
			Exec(ctx)
		if isUniqueViolation(err) {
			return errcodes.Duplicate("Member", "email")
		}
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errcodes.Storage(err)
	}

	logger.FromContext(ctx).Info("member added", logger.Data{"member_id": member.ID})

	return member, nil
}

func (svc *Service) RetrieveMember(ctx context.Context, id int) (*models.Member, error) {
	member := &models.Member{}
	err := svc.db.
		NewSelect().
		Model(member).
		Where("m.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Member")
		}
		return nil, errcodes.Storage(errors.WithStack(err))
	}
	return member, nil
}

// ListMembers returns the id and name of every member in registration order.
func (svc *Service) ListMembers(ctx context.Context) ([]*models.MemberSummary, error) {
	summaries := []*models.MemberSummary{}
	err := svc.db.
		NewSelect().
		Model((*models.Member)(nil)).
		ColumnExpr("m.id, m.name").
		Order("m.id ASC").
		Scan(ctx, &summaries)
	if err != nil {
		return nil, errcodes.Storage(errors.WithStack(err))
	}
	return summaries, nil
}

// pgUniqueViolation is the SQLSTATE PostgreSQL reports for a unique index
// conflict.
const pgUniqueViolation = "23505"

// isUniqueViolation matches the unique index error from both SQLite and
// PostgreSQL. It covers the window between the existence check and the
// insert when another connection registers the same email.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	// The SQLite drivers behind sqliteshim share no error type.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
