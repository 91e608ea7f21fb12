package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/pkg/mailer"
)

// Notifier sends best-effort emails. Delivery errors are logged and dropped.
type Notifier struct {
	mailer  mailer.Mailer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(m mailer.Mailer, metrics *MetricsService, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{mailer: m, metrics: metrics, logger: logger}
}

// Notify blocks until the relay answers and reports whether the mail was accepted.
func (n *Notifier) Notify(ctx context.Context, to, subject, body string) bool {
	to = strings.TrimSpace(to)
	if n == nil || n.mailer == nil || to == "" {
		return false
	}
	err := n.mailer.Send(ctx, mailer.Message{To: to, Subject: subject, Body: body})
	n.metrics.RecordEmail(err == nil)
	if err != nil {
		n.logger.Warn("email sending failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return false
	}
	n.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return true
}
