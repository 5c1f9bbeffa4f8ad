package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

const defaultTimeout = 30 * time.Second

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	StartTLS bool
	Timeout  time.Duration

	// TLSConfig overrides the STARTTLS configuration. ServerName defaults to Host.
	TLSConfig *tls.Config
}

// Transport delivers one message per connection. It keeps no state between sends.
type Transport struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func New(opts Options, logger *slog.Logger) *Transport {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.From == "" {
		opts.From = opts.Username
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{opts: opts, logger: logger, now: time.Now}
}

func (t *Transport) Send(ctx context.Context, n domain.Notification) error {
	if n.To == "" {
		return errors.New("smtp send: empty recipient")
	}
	raw, err := buildMessage(t.opts.From, n, t.now())
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	addr := net.JoinHostPort(t.opts.Host, strconv.Itoa(t.opts.Port))
	dialer := net.Dialer{Timeout: t.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}

	deadline := time.Now().Add(t.opts.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp set deadline: %w", err)
	}

	c, err := t.newClient(conn)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := t.deliver(c, n.To, raw); err != nil {
		return err
	}
	if err := c.Quit(); err != nil {
		t.logger.Warn("smtp_quit_failed", "error", err)
	}
	return nil
}

// newClient upgrades conn with STARTTLS when configured. The upgrade resets the
// session, so Hello in deliver is the first greeting over TLS.
func (t *Transport) newClient(conn net.Conn) (*gosmtp.Client, error) {
	if !t.opts.StartTLS {
		return gosmtp.NewClient(conn), nil
	}
	c, err := gosmtp.NewClientStartTLS(conn, t.tlsConfig())
	if err != nil {
		return nil, fmt.Errorf("smtp starttls: %w", err)
	}
	return c, nil
}

func (t *Transport) deliver(c *gosmtp.Client, to string, raw []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("smtp hello: %w", err)
	}

	if t.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", t.opts.Username, t.opts.Password)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(t.opts.From, nil); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to, nil); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write(raw); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp write data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return nil
}

func (t *Transport) tlsConfig() *tls.Config {
	if t.opts.TLSConfig != nil {
		cfg := t.opts.TLSConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = t.opts.Host
		}
		return cfg
	}
	return &tls.Config{ServerName: t.opts.Host, MinVersion: tls.VersionTLS12}
}
