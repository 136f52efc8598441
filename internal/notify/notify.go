package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	xerrors "truthchain/internal/errors"
	"truthchain/pkg/logger"
)

// Notice is a terminal, user-visible message produced when a boundary
// operation fails (or completes). Notices never propagate as faults.
type Notice struct {
	Code       xerrors.Code
	Message    string
	Severity   xerrors.Severity
	SessionID  string
	OccurredAt time.Time
}

// FromError converts a boundary failure into a notice.
func FromError(sessionID string, err error) Notice {
	notice := Notice{
		SessionID:  sessionID,
		OccurredAt: time.Now(),
		Code:       xerrors.CodeOf(err),
		Severity:   xerrors.SeverityOf(err),
	}
	if e, ok := xerrors.From(err); ok {
		notice.Message = e.Message()
	} else if err != nil {
		notice.Message = err.Error()
	}
	return notice
}

// Notifier delivers a notice to one surface.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// Dispatcher fans a notice out to every registered notifier.
type Dispatcher interface {
	Notify(ctx context.Context, notice Notice) error
}

// FanoutDispatcher broadcasts notices to multiple notifiers.
type FanoutDispatcher struct {
	notifiers []Notifier
}

// NewFanout builds a dispatcher over the given notifiers.
func NewFanout(notifiers ...Notifier) *FanoutDispatcher {
	set := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			set = append(set, n)
		}
	}
	return &FanoutDispatcher{notifiers: set}
}

// Notify delivers the notice to every notifier, joining any errors.
func (d *FanoutDispatcher) Notify(ctx context.Context, notice Notice) error {
	if d == nil {
		return nil
	}
	var errs []error
	for _, notifier := range d.notifiers {
		if err := notifier.Notify(ctx, notice); err != nil {
			errs = append(errs, fmt.Errorf("notifier: %w", err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LogNotifier writes notices to the structured log. It is the default
// surface when no UI transport is attached.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier builds a notifier over the given logger, defaulting to the
// application logger.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = logger.Named("notify")
	}
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, notice Notice) error {
	attrs := []any{
		slog.String("code", string(notice.Code)),
		slog.String("session_id", notice.SessionID),
		slog.Time("occurred_at", notice.OccurredAt),
	}
	switch notice.Severity {
	case xerrors.SeverityCritical:
		n.log.Error(notice.Message, attrs...)
	case xerrors.SeverityWarning:
		n.log.Warn(notice.Message, attrs...)
	default:
		n.log.Info(notice.Message, attrs...)
	}
	return nil
}

var (
	_ Notifier   = (*LogNotifier)(nil)
	_ Dispatcher = (*FanoutDispatcher)(nil)
)
