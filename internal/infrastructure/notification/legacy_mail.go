package notification

import (
	"context"
	"errors"

	appconn "github.com/carbonlink/backend/internal/application/connection"
	"go.uber.org/zap"
)

// ErrMissingRecipientEmail is returned when a recipient has no email address
var ErrMissingRecipientEmail = errors.New("recipient has no email address")

// MailJob is one outgoing mail handed to the mail pipeline
type MailJob struct {
	From    string
	To      string
	Kind    string
	Subject string
	Body    string
}

// MailQueue accepts mail jobs for asynchronous delivery
type MailQueue interface {
	Enqueue(ctx context.Context, job MailJob) error
}

// LogMailQueue writes mail jobs to the log; used where no mail relay is configured
type LogMailQueue struct {
	logger *zap.Logger
}

// NewLogMailQueue creates a LogMailQueue
func NewLogMailQueue(logger *zap.Logger) *LogMailQueue {
	return &LogMailQueue{logger: logger}
}

// Enqueue logs the job
func (q *LogMailQueue) Enqueue(_ context.Context, job MailJob) error {
	q.logger.Info("mail job queued",
		zap.String("to", job.To),
		zap.String("kind", job.Kind),
		zap.String("subject", job.Subject),
	)
	return nil
}

// LegacyMailNotifier sends connection notifications as mail
type LegacyMailNotifier struct {
	queue MailQueue
	from  string
}

// NewLegacyMailNotifier creates a LegacyMailNotifier
func NewLegacyMailNotifier(queue MailQueue, from string) *LegacyMailNotifier {
	return &LegacyMailNotifier{queue: queue, from: from}
}

// NotifyConnectionRequested mails a connection request to the recipient
func (n *LegacyMailNotifier) NotifyConnectionRequested(ctx context.Context, req appconn.ConnectionRequestNotification) error {
	return n.send(ctx, req.Recipient.Email, RequestMessage(req))
}

// NotifyStatusChanged mails an answer to the recipient
func (n *LegacyMailNotifier) NotifyStatusChanged(ctx context.Context, change appconn.StatusChangeNotification) error {
	return n.send(ctx, change.Recipient.Email, StatusMessage(change))
}

func (n *LegacyMailNotifier) send(ctx context.Context, to string, msg Message) error {
	if to == "" {
		return ErrMissingRecipientEmail
	}
	return n.queue.Enqueue(ctx, MailJob{
		From:    n.from,
		To:      to,
		Kind:    msg.Kind,
		Subject: msg.Title,
		Body:    msg.Body,
	})
}

var _ appconn.Notifier = (*LegacyMailNotifier)(nil)
