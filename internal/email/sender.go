// Package email renders and sends the transactional mail produced by the
// notification outbox.
package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mafiaidola/leads-manager-sub000/internal/notification"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification/outbox"
)

type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers a rendered message. SMTPSender is the production
// implementation; tests substitute a recorder.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render turns an outbox record into a sendable message.
func Render(rec *outbox.Record) (Message, error) {
	var payload notification.EmailPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return Message{}, fmt.Errorf("decode payload for outbox record %s: %w", rec.ID, err)
	}

	switch rec.Kind {
	case outbox.KindLeadAssigned:
		return Message{
			To:      rec.Recipient,
			Subject: fmt.Sprintf("Lead assigned to you: %s", payload.LeadName),
			TextBody: fmt.Sprintf(
				"Hi %s,\n\n%s assigned the lead %q to you. Open the lead to follow up.\n",
				payload.RecipientName, payload.ActorName, payload.LeadName,
			),
			HTMLBody: fmt.Sprintf(
				"<p>Hi %s,</p><p><strong>%s</strong> assigned the lead <strong>%s</strong> to you. Open the lead to follow up.</p>",
				payload.RecipientName, payload.ActorName, payload.LeadName,
			),
		}, nil
	case outbox.KindLeadStatusChanged:
		return Message{
			To:      rec.Recipient,
			Subject: fmt.Sprintf("Lead %s moved to %s", payload.LeadName, payload.ToStatus),
			TextBody: fmt.Sprintf(
				"Hi %s,\n\n%s moved the lead %q from %s to %s.\n",
				payload.RecipientName, payload.ActorName, payload.LeadName, payload.FromStatus, payload.ToStatus,
			),
			HTMLBody: fmt.Sprintf(
				"<p>Hi %s,</p><p><strong>%s</strong> moved the lead <strong>%s</strong> from %s to <strong>%s</strong>.</p>",
				payload.RecipientName, payload.ActorName, payload.LeadName, payload.FromStatus, payload.ToStatus,
			),
		}, nil
	default:
		return Message{}, fmt.Errorf("unknown email kind %q", rec.Kind)
	}
}
