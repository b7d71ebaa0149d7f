// Package notify carries human-readable session and budget notifications
// from the code that produces them to whatever surfaces them: the web UI's
// toast area, the activity queue, or nothing at all.
package notify

import (
	"context"
	"log/slog"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Notification is one user-facing message. Title is short ("Login Failed"),
// Description is a sentence.
type Notification struct {
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// Sink receives notifications. Implementations must not block the caller
// on slow delivery and must never return delivery problems to it; Notify is
// fire-and-forget by contract.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Success builds a success notification stamped with the current time.
func Success(title, description string) Notification {
	return Notification{Kind: KindSuccess, Title: title, Description: description, At: time.Now()}
}

// Failure builds a failure notification stamped with the current time.
func Failure(title, description string) Notification {
	return Notification{Kind: KindFailure, Title: title, Description: description, At: time.Now()}
}

// Multi fans a notification out to several sinks.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		s.Notify(ctx, n)
	}
}

// Discard drops everything. Useful in tests and for the worker process,
// which has no UI.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) {}

// Slog writes notifications to the structured log. The web UI uses Flash
// instead; Slog exists so headless commands still leave a trace.
type Slog struct{}

func (Slog) Notify(ctx context.Context, n Notification) {
	level := slog.LevelInfo
	if n.Kind == KindFailure {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "Notification",
		"kind", string(n.Kind),
		"title", n.Title,
		"description", n.Description)
}
