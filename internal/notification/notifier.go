// Package notification forwards alert events to the operations mailbox.
package notification

import (
	"context"
	"fmt"

	"timeclock_backend/internal/email"
	"timeclock_backend/internal/events"
	"timeclock_backend/platform/config"
	"timeclock_backend/platform/logger"
)

// Notifier emails the configured operations address when alerts are created
// or escalated. Delivery is best effort: a failed send is logged and never
// fails the operation that raised the alert.
type Notifier struct {
	sender email.Sender
	cfg    config.EmailConfig
	log    *logger.Logger
}

// New creates a notifier.
func New(sender email.Sender, cfg config.EmailConfig, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, cfg: cfg, log: log}
}

// Register subscribes the notifier to alert events on the bus.
func (n *Notifier) Register(bus events.Bus) {
	bus.Subscribe(events.AlertCreated{}.EventName(), events.HandlerFunc(n.handleCreated))
	bus.Subscribe(events.AlertEscalated{}.EventName(), events.HandlerFunc(n.handleEscalated))
}

func (n *Notifier) handleCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AlertCreated)
	if !ok {
		return nil
	}
	return n.notify(ctx,
		fmt.Sprintf("[timeclock] journey alert opened for user %d", e.UserID),
		fmt.Sprintf("A journey inconsistency alert was opened.\n\nAlert: %d\nUser: %d\nSeverity: %d\nElapsed: %.1fh\n",
			e.AlertID, e.UserID, e.Severity, e.ElapsedHours))
}

func (n *Notifier) handleEscalated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AlertEscalated)
	if !ok {
		return nil
	}
	return n.notify(ctx,
		fmt.Sprintf("[timeclock] journey alert escalated for user %d", e.UserID),
		fmt.Sprintf("A journey inconsistency alert escalated.\n\nAlert: %d\nUser: %d\nSeverity: %d\nElapsed: %.1fh\n",
			e.AlertID, e.UserID, e.Severity, e.ElapsedHours))
}

func (n *Notifier) notify(ctx context.Context, subject, body string) error {
	to := n.cfg.GetAlertNotifyEmail()
	if to == "" {
		return nil
	}

	if err := n.sender.Send(ctx, email.Message{To: to, Subject: subject, Body: body}); err != nil {
		n.log.Error("alert notification failed", "error", err)
		return err
	}
	return nil
}
