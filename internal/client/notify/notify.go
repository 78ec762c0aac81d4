// Package notify turns sync status transitions into log records and user-facing text.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	stdsync "sync"

	"github.com/iudanet/cashbook/internal/client/remote"
	"github.com/iudanet/cashbook/internal/client/sync"
	"github.com/iudanet/cashbook/internal/models"
)

// LogSink writes every transition to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// OnStatusChange implements sync.NotificationSink
func (s *LogSink) OnStatusChange(status models.SyncStatus, d sync.Detail) {
	attrs := []any{"status", status, "pending", d.Pending}
	if d.Message != "" {
		attrs = append(attrs, "message", d.Message)
	}

	switch {
	case d.Err != nil:
		attrs = append(attrs, "error", d.Err)
		if d.Class != remote.ClassNone {
			attrs = append(attrs, "class", d.Class)
		}
		s.logger.Warn("Sync notification", attrs...)
	case status == models.StatusConflict && d.Conflict != nil:
		attrs = append(attrs,
			"entity", models.EntityKey(d.Conflict.EntityKind, d.Conflict.EntityID),
			"fields", d.Conflict.Fields)
		s.logger.Info("Sync notification", attrs...)
	case status == models.StatusIdle || status == models.StatusSyncing:
		s.logger.Debug("Sync notification", attrs...)
	default:
		s.logger.Info("Sync notification", attrs...)
	}
}

// WriterSink prints user-facing notifications: outcomes of a drain,
// conflict prompts and rejected changes. Idle and Syncing transitions
// without an error are not printed.
type WriterSink struct {
	w  io.Writer
	mu stdsync.Mutex
}

// NewWriterSink creates a WriterSink on w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// OnStatusChange implements sync.NotificationSink
func (s *WriterSink) OnStatusChange(status models.SyncStatus, d sync.Detail) {
	if d.Err == nil && (status == models.StatusIdle || status == models.StatusSyncing) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, Render(status, d))
}

// Multi fans a notification out to several sinks in order.
type Multi []sync.NotificationSink

// OnStatusChange implements sync.NotificationSink
func (m Multi) OnStatusChange(status models.SyncStatus, d sync.Detail) {
	for _, sink := range m {
		sink.OnStatusChange(status, d)
	}
}

// Render formats a notification as human-readable text.
func Render(status models.SyncStatus, d sync.Detail) string {
	var b strings.Builder

	message := d.Message
	if message == "" {
		message = defaultMessage(status)
	}
	fmt.Fprintf(&b, "[%s] %s\n", status, message)

	if d.Err != nil {
		if d.Class != remote.ClassNone {
			fmt.Fprintf(&b, "  error (%s): %v\n", d.Class, d.Err)
		} else {
			fmt.Fprintf(&b, "  error: %v\n", d.Err)
		}
	}
	if d.Conflict != nil {
		renderConflict(&b, d.Conflict)
	}
	if d.Pending > 0 {
		fmt.Fprintf(&b, "  pending: %d\n", d.Pending)
	}
	if !d.LastSync.IsZero() {
		fmt.Fprintf(&b, "  last sync: %s\n", d.LastSync.UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	return b.String()
}

func defaultMessage(status models.SyncStatus) string {
	switch status {
	case models.StatusSyncing:
		return "Synchronizing"
	case models.StatusSuccess:
		return "Synchronized"
	case models.StatusError:
		return "Synchronization failed"
	case models.StatusConflict:
		return "Conflict detected"
	default:
		return "Idle"
	}
}

// renderConflict показывает локальную и серверную версию сравниваемых полей
func renderConflict(b *strings.Builder, c *models.Conflict) {
	fmt.Fprintf(b, "  conflict: %s %s changed on the server (%s)\n",
		c.EntityKind, c.EntityID, strings.Join(c.Fields, ", "))
	fmt.Fprintf(b, "    local:  %s\n", Describe(&c.LocalSnapshot))
	if c.RemoteSnapshot == nil {
		b.WriteString("    remote: <deleted>\n")
	} else {
		fmt.Fprintf(b, "    remote: %s\n", Describe(c.RemoteSnapshot))
	}
	b.WriteString("  resolve with: cashbook resolve local|remote\n")
}

// Describe renders the comparable fields of a snapshot on one line.
func Describe(s *models.Snapshot) string {
	switch s.Kind {
	case models.EntityEntry:
		e, err := s.Entry()
		if err != nil {
			break
		}
		return fmt.Sprintf("description=%q due_date=%s amount=%s paid=%s",
			e.Description, e.DueDate, FormatMoney(e.Amount), FormatMoney(e.PaidAmount))
	case models.EntityGoal:
		g, err := s.Goal()
		if err != nil {
			break
		}
		return fmt.Sprintf("name=%q target_amount=%s target_date=%s",
			g.Name, FormatMoney(g.TargetAmount), g.TargetDate)
	default:
		n, err := s.Named()
		if err != nil {
			break
		}
		return fmt.Sprintf("name=%q", n.Name)
	}
	return string(s.Data)
}

// FormatMoney formats minor units as a decimal amount
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
