package conflict

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const (
	citizenTable = "reservas"
	courseTable  = "curso_reservas"
)

type sqlStore struct {
	q sqlx.QueryerContext
}

// NewSQLStore probes the booking tables through q, which may be the pool or an
// open transaction.
func NewSQLStore(q sqlx.QueryerContext) Store {
	return &sqlStore{q: q}
}

// NewSQLChecker is the Checker used by the booking services inside a venue
// transaction.
func NewSQLChecker(q sqlx.QueryerContext) Checker {
	return NewDetector(NewSQLStore(q))
}

func (s *sqlStore) CitizenBookingOverlaps(ctx context.Context, p Probe) (bool, error) {
	return s.overlaps(ctx, citizenTable, p)
}

func (s *sqlStore) CourseBookingOverlaps(ctx context.Context, p Probe) (bool, error) {
	return s.overlaps(ctx, courseTable, p)
}

func (s *sqlStore) overlaps(ctx context.Context, table string, p Probe) (bool, error) {
	query, args, err := buildProbe(table, p)
	if err != nil {
		return false, err
	}

	var id int64
	err = sqlx.GetContext(ctx, s.q, &id, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func buildProbe(table string, p Probe) (string, []interface{}, error) {
	query := `SELECT id FROM ` + table + ` WHERE recinto_id = ? AND start_at < ? AND end_at > ?`
	args := []interface{}{p.VenueID, p.EndAt, p.StartAt}

	if p.ExcludeID != nil {
		query += ` AND id <> ?`
		args = append(args, *p.ExcludeID)
	}
	if len(p.Statuses) > 0 {
		query += ` AND status IN (?)`
		args = append(args, p.Statuses)
	}
	if len(p.ExcludeStatuses) > 0 {
		query += ` AND status NOT IN (?)`
		args = append(args, p.ExcludeStatuses)
	}
	query += ` LIMIT 1`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}
