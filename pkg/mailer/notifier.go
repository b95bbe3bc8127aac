package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Publisher is the part of helpers.RabbitPublisher the notifier needs.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier hands messages to the email worker through RabbitMQ.
type QueueNotifier struct {
	Pub Publisher
}

func NewQueueNotifier(pub Publisher) *QueueNotifier {
	return &QueueNotifier{Pub: pub}
}

func (n *QueueNotifier) Send(ctx context.Context, to, subject, body string) error {
	return n.Pub.PublishJSON(ctx, EmailJob{To: to, Subject: subject, HTML: body})
}

// LogNotifier is used when MAIL_SEND_ENABLED=false: nothing leaves the
// process, the message is only logged.
type LogNotifier struct {
	Logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, to, subject, body string) error {
	n.Logger.WithFields(logrus.Fields{"to": to, "subject": subject, "bytes": len(body)}).Info("email sending disabled; message not sent")
	n.Logger.WithField("to", to).Debug(body)
	return nil
}
