// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail defines the outbound mail collaborator used to deliver one-time codes.

The core treats delivery as a black box: a [Sender] either accepts a message
or fails, and no delivery-status callback exists. Two implementations ship:

  - SMTPSender: real delivery via go-mail (production).
  - LogSender: writes the message to the process log (development/tests).
*/
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/orvia/internal/platform/metrics"
)

// Message is a fully composed outbound email.
type Message struct {
	To       string
	Subject  string
	TextBody string
}

// Sender is the delivery contract consumed by the auth service.
//
// # Blocking
//
// Send blocks until the transport accepts or rejects the message. Callers
// must invoke it only after their own state is durably persisted.
type Sender interface {

	/*
		Send hands a message to the underlying transport.

		Parameters:
		  - context: context.Context
		  - message: Message

		Returns:
		  - error: Delivery failures (connection, authentication, rejection)
	*/
	Send(context context.Context, message Message) error
}

// # Message Composition

// OTPMessage composes the one-time code email for the given mode.
//
// The mode affects wording only; the code and expiry window are identical
// for login and signup.
func OTPMessage(to, mode, code string, expiresIn time.Duration) Message {
	minutes := int(expiresIn.Minutes())

	subject := "Your Orvia sign-in code"
	intro := "Use this code to sign in to your Orvia account."
	if mode == "signup" {
		subject = "Confirm your Orvia registration"
		intro = "Use this code to finish creating your Orvia account."
	}

	body := fmt.Sprintf(
		"%s\n\nYour code: %s\n\nIt expires in %d minutes. If you did not request it, you can ignore this email.\n",
		intro, code, minutes,
	)

	return Message{To: to, Subject: subject, TextBody: body}
}

// # Development Sender

// LogSender writes outbound messages to the structured log instead of
// dialing SMTP. Never enable outside development: the plaintext code ends
// up in the log stream.
type LogSender struct {
	Logger *slog.Logger
}

// Send implements [Sender] by logging the message.
func (sender *LogSender) Send(_ context.Context, message Message) error {
	sender.Logger.Info("mail_logged_instead_of_sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.TextBody),
	)
	metrics.MailDeliveriesTotal.WithLabelValues("ok").Inc()
	return nil
}
