package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Sender delivers notification email through Resend. Without an API
// key it stays disabled and callers log-and-skip.
type Sender struct {
	client *resend.Client
	from   string
	log    zerolog.Logger
}

func NewSender(apiKey, from string, log zerolog.Logger) *Sender {
	s := &Sender{from: from, log: log}
	if apiKey != "" {
		s.client = resend.NewClient(apiKey)
	}
	return s
}

func (s *Sender) Enabled() bool {
	return s.client != nil
}

func (s *Sender) Send(ctx context.Context, to []string, subject, html string) error {
	if s.client == nil {
		return fmt.Errorf("mail sender disabled: no api key")
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	s.log.Info().Str("message_id", sent.Id).Strs("to", to).Str("subject", subject).Msg("mail sent")
	return nil
}
