// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/go-mail/mail"

	"github.com/taibuivan/orvia/internal/platform/metrics"
)

// SMTPSender implements [Sender] over SMTP with STARTTLS negotiation.
type SMTPSender struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger *slog.Logger
}

// NewSMTPSender constructs an [SMTPSender].
func NewSMTPSender(host string, port int, user, pass, from string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		host:   host,
		port:   port,
		user:   user,
		pass:   pass,
		from:   from,
		logger: logger,
	}
}

/*
Send dials the SMTP server and hands off a single message.

Description: The go-mail dialer negotiates STARTTLS when the server offers it.
The dial-and-send cycle blocks the calling request; the context parameter is
accepted for interface symmetry but the underlying transport does not support
cancellation mid-dial.

Parameters:
  - context: context.Context
  - message: Message

Returns:
  - error: Connection, authentication, or rejection failures
*/
func (sender *SMTPSender) Send(_ context.Context, message Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", sender.from)
	m.SetHeader("To", message.To)
	m.SetHeader("Subject", message.Subject)
	m.SetBody("text/plain", message.TextBody)

	dialer := gomail.NewDialer(sender.host, sender.port, sender.user, sender.pass)

	if err := dialer.DialAndSend(m); err != nil {
		metrics.MailDeliveriesTotal.WithLabelValues("error").Inc()
		sender.logger.Error("smtp_send_failed",
			slog.String("host", sender.host),
			slog.String("to", message.To),
			slog.Any("error", err),
		)
		return fmt.Errorf("mail: smtp send failed: %w", err)
	}

	metrics.MailDeliveriesTotal.WithLabelValues("ok").Inc()
	return nil
}
