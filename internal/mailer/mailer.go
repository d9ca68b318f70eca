// Package mailer holds the transports that deliver notification messages.
package mailer

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"council-vote/internal/platform/logger"
)

var ErrNoRecipients = errors.New("no recipients")

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(l *zap.Logger) *LogSender {
	return &LogSender{logger: logger.OrNop(l)}
}

func (s *LogSender) Send(ctx context.Context, to []string, subject, textBody, _ string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("mail",
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.Int("text_bytes", len(textBody)),
	)
	return nil
}

func cleanRecipients(to []string) []string {
	out := make([]string, 0, len(to))
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
