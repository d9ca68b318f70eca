package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"council-vote/internal/domain/ballot"
	"council-vote/internal/domain/motion"
)

type BallotRepo struct {
	db *sql.DB
}

func NewBallotRepo(db *sql.DB) *BallotRepo {
	return &BallotRepo{db: db}
}

const tokenColumns = `
    id, motion_id, value, recipient_name, recipient_email, recipient_unit, status,
    used_at, created_at, email_sent, email_sent_at, email_error
`

func scanToken(row rowScanner) (*ballot.VoterToken, error) {
	t := &ballot.VoterToken{}
	var (
		name, email, unit, emailErr sql.NullString
		usedAt, sentAt              sql.NullTime
	)
	err := row.Scan(&t.ID, &t.MotionID, &t.Value, &name, &email, &unit, &t.Status,
		&usedAt, &t.CreatedAt, &t.EmailSent, &sentAt, &emailErr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ballot.ErrTokenNotFound
		}
		return nil, err
	}
	t.RecipientName = nullString(name)
	t.RecipientEmail = nullString(email)
	t.RecipientUnit = nullString(unit)
	t.EmailError = nullString(emailErr)
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	if sentAt.Valid {
		t.EmailSentAt = &sentAt.Time
	}
	return t, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// Cast locks the token row first and the motion row second, the same order
// used by every path that touches both.
func (r *BallotRepo) Cast(ctx context.Context, tokenValue string, fn ballot.CastFunc) (*ballot.Ballot, error) {
	var b *ballot.Ballot
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		t, err := scanToken(tx.QueryRowContext(ctx,
			`SELECT `+tokenColumns+` FROM voter_tokens WHERE value = $1 FOR UPDATE`, tokenValue))
		if err != nil {
			return err
		}
		m, err := scanMotion(tx.QueryRowContext(ctx,
			`SELECT `+motionColumns+` FROM motions WHERE id = $1 FOR SHARE`, t.MotionID))
		if err != nil {
			if errors.Is(err, motion.ErrNotFound) {
				return ballot.ErrTokenNotFound
			}
			return err
		}

		b, err = fn(t, m)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO ballots (id, motion_id, token_id, choice, submitted_at, user_agent, client_hash)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, b.ID, b.MotionID, b.TokenID, b.Choice, b.SubmittedAt, b.UserAgent, b.ClientHash)
		if err != nil {
			if isUniqueViolation(err) {
				return ballot.ErrTokenUsed
			}
			return err
		}

		res, err := tx.ExecContext(ctx, `
            UPDATE voter_tokens SET status = 'used', used_at = $2
            WHERE id = $1 AND status = 'active'
        `, t.ID, b.SubmittedAt)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ballot.ErrTokenUsed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BallotRepo) CreateTokens(ctx context.Context, tokens []ballot.VoterToken) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, t := range tokens {
			_, err := tx.ExecContext(ctx, `
                INSERT INTO voter_tokens (id, motion_id, value, recipient_name, recipient_email,
                                          recipient_unit, status, created_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            `, t.ID, t.MotionID, t.Value, t.RecipientName, t.RecipientEmail, t.RecipientUnit, t.Status, t.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BallotRepo) getToken(ctx context.Context, id uuid.UUID) (*ballot.VoterToken, error) {
	return scanToken(r.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM voter_tokens WHERE id = $1`, id))
}

func (r *BallotRepo) ListTokens(ctx context.Context, motionID uuid.UUID) ([]ballot.VoterToken, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+tokenColumns+`
        FROM voter_tokens
        WHERE motion_id = $1
        ORDER BY created_at, id
    `, motionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []ballot.VoterToken{}
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

func (r *BallotRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE voter_tokens SET status = 'revoked'
        WHERE id = $1 AND status = 'active'
    `, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.getToken(ctx, id); err != nil {
		return err
	}
	return ballot.ErrTokenNotActive
}

func (r *BallotRepo) RecordInvitation(ctx context.Context, id uuid.UUID, sentAt *time.Time, sendErr *string) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE voter_tokens
        SET email_sent = email_sent OR $2::timestamptz IS NOT NULL,
            email_sent_at = COALESCE($2, email_sent_at),
            email_error = $3
        WHERE id = $1
    `, id, sentAt, sendErr)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ballot.ErrTokenNotFound
	}
	return nil
}

func (r *BallotRepo) VoterEmails(ctx context.Context, motionID uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT recipient_email
        FROM voter_tokens
        WHERE motion_id = $1 AND recipient_email IS NOT NULL AND btrim(recipient_email) <> ''
        ORDER BY created_at, id
    `, motionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
