// Package notify delivers operator alerts when an ingestion run fails.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/uranai/pkg/logger"
	"github.com/okian/uranai/pkg/metrics"
)

// Driver names accepted by New.
const (
	DriverLog  = "log"
	DriverSMTP = "smtp"
)

// Notifier sends a short plain-text alert.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Settings selects and configures a notifier.
type Settings struct {
	Driver   string
	Mail     Mail
	SMTPAddr string
	Username string
	Password string
}

// New returns the notifier named by s.Driver, instrumented with metrics.
func New(s Settings, log logger.Logger) (Notifier, error) {
	if log == nil {
		log = logger.Discard()
	}
	var n Notifier
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case DriverLog:
		n = NewLogNotifier(log)
	case DriverSMTP:
		n = NewSMTPNotifier(s.SMTPAddr, s.Mail,
			WithAuth(s.Username, s.Password),
			WithLogger(log))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, s.Driver)
	}
	return Instrument(n), nil
}

type instrumented struct {
	next Notifier
}

// Instrument counts deliveries by result. Wrapping twice is a no-op.
func Instrument(n Notifier) Notifier {
	if _, ok := n.(*instrumented); ok {
		return n
	}
	return &instrumented{next: n}
}

func (i *instrumented) Notify(ctx context.Context, message string) error {
	if err := i.next.Notify(ctx, message); err != nil {
		metrics.RecordNotification(metrics.OutcomeNotifyFailed)
		metrics.RecordErrorByComponent("notify", "delivery")
		return err
	}
	metrics.RecordNotification(metrics.OutcomeNotifySent)
	return nil
}

// LogNotifier writes alerts to the log instead of sending them.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.Discard()
	}
	return &LogNotifier{logger: l}
}

// Notify logs message at error level.
func (n *LogNotifier) Notify(ctx context.Context, message string) error {
	n.logger.Error(ctx, "alert", logger.String("message", message))
	return nil
}
