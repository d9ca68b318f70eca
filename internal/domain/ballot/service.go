package ballot

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"council-vote/internal/domain/motion"
	"council-vote/internal/platform/clock"
	"council-vote/internal/platform/logger"
)

type SubmitRequest struct {
	MotionID   uuid.UUID
	Token      string
	Choice     string
	UserAgent  string
	ClientAddr string
}

type TokenRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Unit  string `json:"unit"`
}

// IssuedToken carries the secret value, which is only returned at issue time.
type IssuedToken struct {
	VoterToken
	Value string `json:"token"`
}

type MotionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*motion.Motion, error)
}

type Sender interface {
	Send(ctx context.Context, to []string, subject, textBody, htmlBody string) error
}

type Service struct {
	repo    Repository
	motions MotionReader
	clock   clock.Clock
	hashKey [32]byte
	logger  *zap.Logger
}

func NewService(repo Repository, motions MotionReader, c clock.Clock, signingSecret string, l *zap.Logger) *Service {
	if c == nil {
		c = clock.System{}
	}
	return &Service{
		repo:    repo,
		motions: motions,
		clock:   c,
		hashKey: blake2b.Sum256([]byte(signingSecret)),
		logger:  logger.OrNop(l),
	}
}

// SubmitVote records one ballot for the token. Ineligible submissions return
// an *IneligibleError.
func (s *Service) SubmitVote(ctx context.Context, req SubmitRequest) (*Ballot, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, ErrTokenNotFound
	}

	b, err := s.repo.Cast(ctx, token, func(t *VoterToken, m *motion.Motion) (*Ballot, error) {
		now := s.clock.Now()
		choice, err := CheckEligibility(t, m, req.MotionID, req.Choice, now)
		if err != nil {
			return nil, err
		}
		return &Ballot{
			ID:          uuid.New(),
			MotionID:    m.ID,
			TokenID:     t.ID,
			Choice:      choice,
			SubmittedAt: now,
			UserAgent:   optional(req.UserAgent),
			ClientHash:  s.hashClient(req.ClientAddr),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ballot recorded",
		zap.String("motion_id", b.MotionID.String()),
		zap.String("ballot_id", b.ID.String()),
	)
	return b, nil
}

// CheckEligibility applies the vote preconditions in order and returns the
// canonical option label for choice.
func CheckEligibility(t *VoterToken, m *motion.Motion, motionID uuid.UUID, choice string, now time.Time) (string, error) {
	if t == nil || m == nil || t.MotionID != motionID {
		return "", ErrTokenNotFound
	}
	switch t.Status {
	case TokenActive:
	case TokenRevoked:
		return "", ErrTokenRevoked
	default:
		return "", ErrTokenUsed
	}
	if m.Status != motion.StatusOpen {
		return "", ErrMotionNotOpen
	}
	if now.Before(m.OpensAt) {
		return "", ErrVotingNotStarted
	}
	if now.After(m.ClosesAt) {
		return "", ErrVotingClosed
	}
	label, ok := m.Option(choice)
	if !ok {
		return "", ErrUnknownChoice
	}
	return label, nil
}

// IssueTokens creates one active token per request for a draft or open motion.
func (s *Service) IssueTokens(ctx context.Context, motionID uuid.UUID, reqs []TokenRequest) ([]IssuedToken, error) {
	if len(reqs) == 0 {
		return nil, ErrNoTokens
	}
	m, err := s.motions.GetByID(ctx, motionID)
	if err != nil {
		return nil, err
	}
	if m.Status != motion.StatusDraft && m.Status != motion.StatusOpen {
		return nil, ErrMotionFinished
	}

	now := s.clock.Now()
	tokens := make([]VoterToken, 0, len(reqs))
	for _, r := range reqs {
		value, err := newTokenValue()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		tokens = append(tokens, VoterToken{
			ID:             uuid.New(),
			MotionID:       motionID,
			Value:          value,
			RecipientName:  optional(r.Name),
			RecipientEmail: optional(r.Email),
			RecipientUnit:  optional(r.Unit),
			Status:         TokenActive,
			CreatedAt:      now,
		})
	}
	if err := s.repo.CreateTokens(ctx, tokens); err != nil {
		return nil, err
	}

	issued := make([]IssuedToken, len(tokens))
	for i, t := range tokens {
		issued[i] = IssuedToken{VoterToken: t, Value: t.Value}
	}
	s.logger.Info("voter tokens issued", zap.String("motion_id", motionID.String()), zap.Int("count", len(tokens)))
	return issued, nil
}

func (s *Service) ListTokens(ctx context.Context, motionID uuid.UUID) ([]VoterToken, error) {
	if _, err := s.motions.GetByID(ctx, motionID); err != nil {
		return nil, err
	}
	return s.repo.ListTokens(ctx, motionID)
}

func (s *Service) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	if err := s.repo.Revoke(ctx, tokenID); err != nil {
		return err
	}
	s.logger.Info("voter token revoked", zap.String("token_id", tokenID.String()))
	return nil
}

// InvitationReport summarises one SendInvitations run.
type InvitationReport struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// SendInvitations mails each active, not yet invited token its voting link.
// Per-token failures are recorded on the token and do not stop the run.
func (s *Service) SendInvitations(ctx context.Context, motionID uuid.UUID, sender Sender, baseURL string) (InvitationReport, error) {
	var report InvitationReport
	m, err := s.motions.GetByID(ctx, motionID)
	if err != nil {
		return report, err
	}
	tokens, err := s.repo.ListTokens(ctx, motionID)
	if err != nil {
		return report, err
	}

	for _, t := range tokens {
		if t.Status != TokenActive || t.EmailSent || t.RecipientEmail == nil {
			report.Skipped++
			continue
		}
		subject, text, htmlBody := invitation(m, &t, baseURL)
		sendErr := sender.Send(ctx, []string{*t.RecipientEmail}, subject, text, htmlBody)

		var sentAt *time.Time
		var errMsg *string
		if sendErr != nil {
			msg := sendErr.Error()
			errMsg = &msg
			report.Failed++
			s.logger.Warn("invitation delivery failed",
				zap.String("motion_id", motionID.String()),
				zap.String("token_id", t.ID.String()),
				zap.Error(sendErr),
			)
		} else {
			now := s.clock.Now()
			sentAt = &now
			report.Sent++
		}
		if err := s.repo.RecordInvitation(ctx, t.ID, sentAt, errMsg); err != nil {
			s.logger.Error("record invitation failed", zap.String("token_id", t.ID.String()), zap.Error(err))
		}
	}
	return report, nil
}

func invitation(m *motion.Motion, t *VoterToken, baseURL string) (subject, text, htmlBody string) {
	link := fmt.Sprintf("%s/motions/%s/vote?token=%s", strings.TrimRight(baseURL, "/"), m.ID, url.QueryEscape(t.Value))
	greeting := "Hello"
	if t.RecipientName != nil {
		greeting = "Hello " + *t.RecipientName
	}
	subject = fmt.Sprintf("Your ballot: %s (%s)", m.Title, m.Reference)
	text = fmt.Sprintf("%s,\n\nYou are invited to vote on %q.\nVoting closes %s.\n\nCast your ballot: %s\n\nThis link can be used once.\n",
		greeting, m.Title, m.ClosesAt.Format(time.RFC1123), link)
	htmlBody = fmt.Sprintf("<p>%s,</p><p>You are invited to vote on <strong>%s</strong>.</p><p>Voting closes %s.</p><p><a href=\"%s\">Cast your ballot</a></p>",
		html.EscapeString(greeting), html.EscapeString(m.Title), m.ClosesAt.Format(time.RFC1123), html.EscapeString(link))
	return subject, text, htmlBody
}

func (s *Service) hashClient(addr string) *string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	h, _ := blake2b.New256(s.hashKey[:])
	h.Write([]byte(addr))
	sum := hex.EncodeToString(h.Sum(nil))
	return &sum
}

func newTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
