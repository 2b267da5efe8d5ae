package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/okian/uranai/pkg/logger"
)

// Mail holds the fixed envelope used for every alert.
type Mail struct {
	From    string
	To      string
	Subject string
}

// Build renders an RFC 5322 message carrying body.
func (m Mail) Build(body string, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		// leading dots are escaped by the DATA writer
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	return b.Bytes()
}

// SMTPOption configures an SMTPNotifier.
type SMTPOption func(*SMTPNotifier)

// WithAuth enables PLAIN auth when username is non-empty.
func WithAuth(username, password string) SMTPOption {
	return func(n *SMTPNotifier) {
		n.username = username
		n.password = password
	}
}

// WithDialTimeout bounds connection setup.
func WithDialTimeout(d time.Duration) SMTPOption {
	return func(n *SMTPNotifier) {
		if d > 0 {
			n.dialTimeout = d
		}
	}
}

// WithLogger sets the notifier's logger.
func WithLogger(l logger.Logger) SMTPOption {
	return func(n *SMTPNotifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithClock overrides the Date header source.
func WithClock(now func() time.Time) SMTPOption {
	return func(n *SMTPNotifier) {
		if now != nil {
			n.now = now
		}
	}
}

// SMTPNotifier sends one mail per alert through an SMTP relay.
type SMTPNotifier struct {
	addr        string
	mail        Mail
	username    string
	password    string
	dialTimeout time.Duration
	now         func() time.Time
	logger      logger.Logger
}

// NewSMTPNotifier creates a notifier relaying through addr (host:port).
func NewSMTPNotifier(addr string, mail Mail, opts ...SMTPOption) *SMTPNotifier {
	n := &SMTPNotifier{
		addr:        addr,
		mail:        mail,
		dialTimeout: 10 * time.Second,
		now:         time.Now,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify sends message as the mail body.
func (n *SMTPNotifier) Notify(ctx context.Context, message string) error {
	if err := n.send(ctx, message); err != nil {
		n.logger.Error(ctx, "alert mail not sent",
			logger.String("smtp_addr", n.addr),
			logger.String("message", message),
			logger.Error(err))
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	n.logger.Info(ctx, "alert mail sent", logger.String("to", n.mail.To))
	return nil
}

func (n *SMTPNotifier) send(ctx context.Context, message string) error {
	host, _, err := net.SplitHostPort(n.addr)
	if err != nil {
		return err
	}

	d := net.Dialer{Timeout: n.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if n.username != "" {
		if err := c.Auth(smtp.PlainAuth("", n.username, n.password, host)); err != nil {
			return err
		}
	}
	if err := c.Mail(n.mail.From); err != nil {
		return err
	}
	if err := c.Rcpt(n.mail.To); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(n.mail.Build(message, n.now())); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
