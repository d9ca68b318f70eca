package ballot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"council-vote/internal/domain/motion"
)

type TokenStatus string

const (
	TokenActive  TokenStatus = "active"
	TokenUsed    TokenStatus = "used"
	TokenRevoked TokenStatus = "revoked"
)

// VoterToken is a single-use credential for one motion.
type VoterToken struct {
	ID             uuid.UUID   `json:"id"`
	MotionID       uuid.UUID   `json:"motion_id"`
	Value          string      `json:"-"`
	RecipientName  *string     `json:"recipient_name,omitempty"`
	RecipientEmail *string     `json:"recipient_email,omitempty"`
	RecipientUnit  *string     `json:"recipient_unit,omitempty"`
	Status         TokenStatus `json:"status"`
	UsedAt         *time.Time  `json:"used_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	EmailSent      bool        `json:"email_sent"`
	EmailSentAt    *time.Time  `json:"email_sent_at,omitempty"`
	EmailError     *string     `json:"email_error,omitempty"`
}

// Ballot is immutable once stored.
type Ballot struct {
	ID          uuid.UUID `json:"id"`
	MotionID    uuid.UUID `json:"motion_id"`
	TokenID     uuid.UUID `json:"token_id"`
	Choice      string    `json:"choice"`
	SubmittedAt time.Time `json:"submitted_at"`
	UserAgent   *string   `json:"-"`
	ClientHash  *string   `json:"-"`
}

// IneligibleError is a user-facing vote rejection. Reason is a stable code.
type IneligibleError struct {
	Reason  string
	Message string
}

func (e *IneligibleError) Error() string { return e.Message }

var (
	ErrTokenNotFound    = &IneligibleError{Reason: "token_not_found", Message: "voting token not recognised for this motion"}
	ErrTokenUsed        = &IneligibleError{Reason: "token_used", Message: "this voting token has already been used"}
	ErrTokenRevoked     = &IneligibleError{Reason: "token_revoked", Message: "this voting token has been revoked"}
	ErrMotionNotOpen    = &IneligibleError{Reason: "motion_not_open", Message: "this motion is not open for voting"}
	ErrVotingNotStarted = &IneligibleError{Reason: "voting_not_started", Message: "voting has not started yet"}
	ErrVotingClosed     = &IneligibleError{Reason: "voting_closed", Message: "voting has closed"}
	ErrUnknownChoice    = &IneligibleError{Reason: "unknown_choice", Message: "choice is not one of the motion's options"}
)

var (
	ErrTokenNotActive = errors.New("token is not active")
	ErrNoTokens       = errors.New("at least one token is required")
	ErrMotionFinished = errors.New("tokens cannot be issued for a closed motion")
)

// CastFunc checks eligibility against the locked token and its motion and
// returns the ballot to store.
type CastFunc func(t *VoterToken, m *motion.Motion) (*Ballot, error)

type Repository interface {
	// Cast loads the token by value with a row lock, loads its motion, runs fn,
	// then inserts the ballot and flips the token to used in one transaction.
	Cast(ctx context.Context, tokenValue string, fn CastFunc) (*Ballot, error)
	CreateTokens(ctx context.Context, tokens []VoterToken) error
	ListTokens(ctx context.Context, motionID uuid.UUID) ([]VoterToken, error)
	// Revoke flips an active token to revoked, else ErrTokenNotActive.
	Revoke(ctx context.Context, id uuid.UUID) error
	RecordInvitation(ctx context.Context, id uuid.UUID, sentAt *time.Time, sendErr *string) error
}
