package notify

import (
	"context"

	"go.uber.org/zap"
)

// EmailSender records the intent to send alert emails. Actual delivery is
// the hosting application's concern; this implementation only logs.
type EmailSender struct {
	logger *zap.Logger
}

// NewEmailSender creates an email sender
func NewEmailSender(logger *zap.Logger) *EmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailSender{logger: logger}
}

// Send logs the email that would be sent
func (s *EmailSender) Send(ctx context.Context, target, subject, body string) error {
	s.logger.Info("email alert would be sent",
		zap.String("target", target),
		zap.String("subject", subject))
	return nil
}
