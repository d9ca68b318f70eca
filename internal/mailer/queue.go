package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"council-vote/internal/platform/logger"
)

// EmailJob is the payload pushed to the mail queue for an external mail worker.
type EmailJob struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	To        []string  `json:"to"`
	Subject   string    `json:"subject"`
	BodyText  string    `json:"body_text"`
	BodyHTML  string    `json:"body_html"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueSender hands messages to a Redis list consumed by a separate mail worker.
// A successful push counts as delivered.
type QueueSender struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

func NewQueueSender(client *redis.Client, key string, l *zap.Logger) *QueueSender {
	if key == "" {
		key = "worker:emails"
	}
	return &QueueSender{client: client, key: key, logger: logger.OrNop(l)}
}

func (q *QueueSender) Send(ctx context.Context, to []string, subject, textBody, htmlBody string) error {
	to = cleanRecipients(to)
	if len(to) == 0 {
		return ErrNoRecipients
	}
	job := EmailJob{
		ID:        uuid.NewString(),
		Type:      "email",
		To:        to,
		Subject:   subject,
		BodyText:  textBody,
		BodyHTML:  htmlBody,
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued email job", zap.String("job_id", job.ID), zap.Int("recipients", len(to)))
	return nil
}
