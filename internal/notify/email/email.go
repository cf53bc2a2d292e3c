package email

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/zflorman/Hillpulse-v3/internal/notify"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender is the outbound transport. The smtp subpackage provides the real
// implementation; mock provides the test double.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// Notifier delivers summaries over email. The plain-text summary is rendered
// through markdown so the "Link:" line becomes a clickable paragraph.
type Notifier struct {
	sender    Sender
	from      string
	to        string
	converter goldmark.Markdown
}

func New(sender Sender, from, to string) *Notifier {
	return &Notifier{
		sender:    sender,
		from:      from,
		to:        to,
		converter: goldmark.New(goldmark.WithExtensions(extension.Linkify)),
	}
}

func (n *Notifier) Name() string { return "email" }

func (n *Notifier) Notify(ctx context.Context, notification notify.Notification) error {
	if n.sender == nil || n.to == "" {
		return notify.ErrNotConfigured
	}

	body, err := n.renderBody(notification)
	if err != nil {
		return fmt.Errorf("render email body: %w", err)
	}

	subject := notification.Title
	if subject == "" {
		subject = "HillPulse update"
	}

	return n.sender.Send(ctx, Message{
		From:    n.from,
		To:      n.to,
		Subject: subject,
		Body:    body,
	})
}

func (n *Notifier) renderBody(notification notify.Notification) (string, error) {
	source := notification.Message
	if notification.URL != "" {
		source += "\n\n[View tweet](" + notification.URL + ")"
	}
	var buf bytes.Buffer
	if err := n.converter.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
