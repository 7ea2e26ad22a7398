// Package notify turns engine outcomes into outbound messages. The
// engine itself never formats or delivers anything; handlers call into
// a Notifier with the facts and the notifier composes the text.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"badgereader/internal/badge"
)

// Mailer delivers one message. Implemented by platform/email.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Notifier is the set of outbound hooks the swipe flow emits.
type Notifier interface {
	ShiftStarted(ctx context.Context, person badge.Person)
	ShiftEnded(ctx context.Context, person badge.Person, durationText string, balanceMinutes int, balanceKnown bool)
	UnrecognizedBadge(ctx context.Context, badgeID string)
	LedgerUpdateFailed(ctx context.Context, person badge.Person, cause error)
}

// Noop drops every notification.
type Noop struct{}

func (Noop) ShiftStarted(context.Context, badge.Person) {}

func (Noop) ShiftEnded(context.Context, badge.Person, string, int, bool) {}

func (Noop) UnrecognizedBadge(context.Context, string) {}

func (Noop) LedgerUpdateFailed(context.Context, badge.Person, error) {}

// Email sends the shift messages by mail: to the person when their
// address is known, falling back to the configured recipient list.
type Email struct {
	mailer     Mailer
	from       string
	recipients []string
}

func NewEmail(mailer Mailer, from string, recipients []string) *Email {
	return &Email{mailer: mailer, from: from, recipients: recipients}
}

func (e *Email) ShiftStarted(ctx context.Context, person badge.Person) {
	subject := fmt.Sprintf("%s - Schicht gestartet", person.Name)
	body := fmt.Sprintf("Hallo %s, deine Schicht hat gerade begonnen. Einen schönen und produktiven Tag!", person.Name)
	e.send(ctx, person, subject, body)
}

func (e *Email) ShiftEnded(ctx context.Context, person badge.Person, durationText string, balanceMinutes int, balanceKnown bool) {
	subject := fmt.Sprintf("%s - Schicht beendet", person.Name)
	body := fmt.Sprintf("Hallo %s, deine Schicht ist nun zu Ende. Deine heutige Arbeitszeit betrug %s.", person.Name, durationText)
	if balanceKnown {
		body += fmt.Sprintf(" Dein aktueller Stundensaldo beträgt %+d Minuten.", balanceMinutes)
	}
	body += " Wir wünschen dir einen schönen Feierabend!"
	e.send(ctx, person, subject, body)
}

func (e *Email) UnrecognizedBadge(ctx context.Context, badgeID string) {
	subject := "Unbekannter Badge gescannt"
	body := fmt.Sprintf("Hallo, gerade wurde ein unbekannter Badge mit der UID %s gescannt.", badgeID)
	e.send(ctx, badge.Person{}, subject, body)
}

func (e *Email) LedgerUpdateFailed(ctx context.Context, person badge.Person, cause error) {
	subject := fmt.Sprintf("%s - Zeitkonto nicht aktualisiert", person.Name)
	body := fmt.Sprintf("Die Schicht von %s wurde erfasst, aber das monatliche Zeitkonto konnte nicht aktualisiert werden: %v", person.Name, cause)
	e.send(ctx, badge.Person{}, subject, body)
}

func (e *Email) send(ctx context.Context, person badge.Person, subject, body string) {
	recipients := e.recipients
	if person.Email != "" {
		recipients = append([]string{person.Email}, withoutAddress(e.recipients, person.Email)...)
	}
	if len(recipients) == 0 {
		slog.Warn("no recipients for notification", "subject", subject)
		return
	}
	for _, to := range recipients {
		if err := e.mailer.Send(ctx, e.from, to, subject, body); err != nil {
			slog.Error("notification send failed", "to", to, "subject", subject, "err", err)
		}
	}
}

func withoutAddress(addrs []string, skip string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a != skip {
			out = append(out, a)
		}
	}
	return out
}
