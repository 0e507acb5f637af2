// Package notify posts run summaries to chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cameronsjo/lambdo/internal/deploy"
	"github.com/cameronsjo/lambdo/internal/gitinfo"
)

// Severity of a message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Message is a notification to send.
type Message struct {
	Title    string
	Body     string
	Severity Severity
	Fields   []Field
}

// Field is a labelled value attached to a message.
type Field struct {
	Name  string
	Value string
}

// Notifier delivers messages to one backend.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
	IsConfigured() bool
}

// Manager fans a message out to every configured notifier.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a manager with the configured notifiers among ns.
func NewManager(ns ...Notifier) *Manager {
	m := &Manager{}
	for _, n := range ns {
		if n.IsConfigured() {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Enabled reports whether at least one notifier is configured.
func (m *Manager) Enabled() bool {
	return len(m.notifiers) > 0
}

// Send delivers msg to every notifier and joins their failures.
func (m *Manager) Send(ctx context.Context, msg *Message) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %w", errors.Join(errs...))
	}
	return nil
}

// RunMessage summarizes a run: one line per unit, then the error if the
// run failed.
func RunMessage(runID string, git gitinfo.Info, results []deploy.Result, runErr error) *Message {
	msg := &Message{
		Title:    fmt.Sprintf("lambdo: %d function(s) deployed", len(results)),
		Severity: SeveritySuccess,
	}
	if runErr != nil {
		msg.Title = "lambdo: run failed"
		msg.Severity = SeverityError
	}

	var lines []string
	for _, r := range results {
		line := r.Unit.Name
		if r.Unit.Action != "" {
			line += " " + string(r.Unit.Action)
		}
		if r.Version != nil {
			line += " v" + r.Version.Version
		}
		if r.Alias != nil {
			line += fmt.Sprintf(" %s→%s", r.Alias.Alias, r.Alias.Version)
		}
		lines = append(lines, line)
	}
	if runErr != nil {
		lines = append(lines, runErr.Error())
	}
	msg.Body = strings.Join(lines, "\n")

	msg.Fields = append(msg.Fields, Field{Name: "run", Value: runID})
	if git.Commit != "" {
		ref := git.Short()
		if git.Branch != "" {
			ref = git.Branch + "@" + ref
		}
		if git.Dirty {
			ref += " (dirty)"
		}
		msg.Fields = append(msg.Fields, Field{Name: "commit", Value: ref})
	}
	return msg
}
