package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"council-vote/internal/domain/motion"
)

type MotionRepo struct {
	db *sql.DB
}

func NewMotionRepo(db *sql.DB) *MotionRepo {
	return &MotionRepo{db: db}
}

const motionColumns = `
    id, reference, title, description, options, opens_at, closes_at, majority,
    status, outcome, outcome_notes, close_reason, closed_at, created_at, updated_at
`

func scanMotion(row rowScanner) (*motion.Motion, error) {
	m := &motion.Motion{}
	var (
		outcome     sql.NullString
		notes       sql.NullString
		closeReason sql.NullString
		closedAt    sql.NullTime
	)
	err := row.Scan(
		&m.ID, &m.Reference, &m.Title, &m.Description, textArray(&m.Options),
		&m.OpensAt, &m.ClosesAt, &m.Majority, &m.Status,
		&outcome, &notes, &closeReason, &closedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, motion.ErrNotFound
		}
		return nil, err
	}
	if outcome.Valid {
		o := motion.Outcome(outcome.String)
		m.Outcome = &o
	}
	if notes.Valid {
		m.OutcomeNotes = &notes.String
	}
	if closeReason.Valid {
		r := motion.CloseReason(closeReason.String)
		m.CloseReason = &r
	}
	if closedAt.Valid {
		m.ClosedAt = &closedAt.Time
	}
	return m, nil
}

func (r *MotionRepo) Create(ctx context.Context, m *motion.Motion) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO motions (id, reference, title, description, options, opens_at, closes_at,
                             majority, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, m.ID, m.Reference, m.Title, m.Description, m.Options, m.OpensAt, m.ClosesAt,
		m.Majority, m.Status, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *MotionRepo) GetByID(ctx context.Context, id uuid.UUID) (*motion.Motion, error) {
	return scanMotion(r.db.QueryRowContext(ctx, `SELECT `+motionColumns+` FROM motions WHERE id = $1`, id))
}

func (r *MotionRepo) List(ctx context.Context, status *motion.Status) ([]motion.Motion, error) {
	query := `SELECT ` + motionColumns + ` FROM motions`
	var rows *sql.Rows
	var err error

	if status != nil {
		query += " WHERE status = $1 ORDER BY created_at DESC"
		rows, err = r.db.QueryContext(ctx, query, *status)
	} else {
		query += " ORDER BY created_at DESC"
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []motion.Motion{}
	for rows.Next() {
		m, err := scanMotion(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *m)
	}
	return res, rows.Err()
}

func (r *MotionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to motion.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE motions SET status = $3, updated_at = $4
        WHERE id = $1 AND status = $2
    `, id, from, to, at)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, id)
}

// checkAffected distinguishes a missing motion from a lost status race.
func (r *MotionRepo) checkAffected(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM motions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return motion.ErrNotFound
	}
	return motion.ErrStatusConflict
}

func (r *MotionRepo) CloseManually(ctx context.Context, id uuid.UUID, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var status motion.Status
		err := tx.QueryRowContext(ctx, `SELECT status FROM motions WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return motion.ErrNotFound
		}
		if err != nil {
			return err
		}
		if status != motion.StatusOpen {
			return motion.ErrStatusConflict
		}
		return closeMotion(ctx, tx, id, motion.ReasonManual, at)
	})
}

func (r *MotionRepo) SetOutcome(ctx context.Context, id uuid.UUID, outcome *motion.Outcome, notes *string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE motions SET outcome = $2, outcome_notes = $3, updated_at = $4
        WHERE id = $1 AND status IN ('closed', 'published')
    `, id, outcome, notes, at)
	if err != nil {
		return err
	}
	if err := r.checkAffected(ctx, res, id); errors.Is(err, motion.ErrStatusConflict) {
		return motion.ErrOutcomeNotAllowed
	} else if err != nil {
		return err
	}
	return nil
}

func (r *MotionRepo) Counts(ctx context.Context, id uuid.UUID) (motion.Counts, error) {
	return counts(ctx, r.db, id)
}

func (r *MotionRepo) ListOpenMotionIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM motions WHERE status = 'open' ORDER BY closes_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CloseIfComplete locks the motion row so that concurrent sweepers and
// manual closes serialise on it.
func (r *MotionRepo) CloseIfComplete(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
	decide func(m *motion.Motion, c motion.Counts) motion.Evaluation,
) (motion.Evaluation, error) {
	var ev motion.Evaluation
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		m, err := scanMotion(tx.QueryRowContext(ctx, `SELECT `+motionColumns+` FROM motions WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if m.Status != motion.StatusOpen {
			return nil
		}
		c, err := counts(ctx, tx, id)
		if err != nil {
			return err
		}
		ev = decide(m, c)
		if !ev.Complete {
			return nil
		}
		return closeMotion(ctx, tx, id, ev.Reason, now)
	})
	if err != nil {
		return motion.Evaluation{}, err
	}
	return ev, nil
}

func closeMotion(ctx context.Context, tx *sql.Tx, id uuid.UUID, reason motion.CloseReason, at time.Time) error {
	if _, err := tx.ExecContext(ctx, `
        UPDATE motions SET status = 'closed', close_reason = $2, closed_at = $3, updated_at = $3
        WHERE id = $1
    `, id, reason, at); err != nil {
		return err
	}
	_, err := ensureNotification(ctx, tx, id, at)
	return err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func counts(ctx context.Context, q querier, id uuid.UUID) (motion.Counts, error) {
	c := motion.Counts{Tally: make(map[string]int)}
	if err := q.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM voter_tokens WHERE motion_id = $1 AND status <> 'revoked'
    `, id).Scan(&c.Eligible); err != nil {
		return c, err
	}

	rows, err := q.QueryContext(ctx, `
        SELECT choice, COUNT(*)
        FROM ballots
        WHERE motion_id = $1
        GROUP BY choice
    `, id)
	if err != nil {
		return c, err
	}
	defer rows.Close()

	for rows.Next() {
		var choice string
		var n int
		if err := rows.Scan(&choice, &n); err != nil {
			return c, err
		}
		c.Tally[choice] = n
		c.Voted += n
	}
	return c, rows.Err()
}
