package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/infrastructure/resilience"
)

const queueGroup = "workers"

// Queue hands accepted documents to cmd/worker over core NATS. Delivery is at most once.
type Queue struct {
	conn         *nats.Conn
	subject      string
	executor     *resilience.Executor
	logger       *slog.Logger
	drainTimeout time.Duration
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger

	// DrainTimeout bounds how long Subscribe waits for pending documents on shutdown.
	DrainTimeout time.Duration
}

func New(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	drainTimeout := options.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = 30 * time.Second
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("resume-router"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:         conn,
		subject:      subject,
		executor:     options.ResilienceExecutor,
		logger:       logger,
		drainTimeout: drainTimeout,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// Dispatch publishes doc as JSON on the configured subject.
func (q *Queue) Dispatch(ctx context.Context, doc *domain.UploadedDocument) error {
	payload, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, countsAsNATSFailure)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// Subscribe runs handler for every document until ctx is done, then drains the subscription
// and returns once every pending document has been handed to handler.
func (q *Queue) Subscribe(ctx context.Context, handler func(context.Context, *domain.UploadedDocument)) error {
	// Documents delivered while draining were already accepted and still need a run.
	sub, err := q.conn.QueueSubscribe(q.subject, queueGroup, func(msg *nats.Msg) {
		doc, err := decodeDocument(msg.Data)
		if err != nil {
			q.logger.Error("nats_message_invalid", "subject", msg.Subject, "error", err)
			return
		}
		handler(context.WithoutCancel(ctx), doc)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	drained := sub.StatusChanged(nats.SubscriptionClosed)
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	select {
	case <-drained:
	case <-time.After(q.drainTimeout):
		q.logger.Warn("nats_drain_timeout", "subject", q.subject, "timeout", q.drainTimeout)
		return fmt.Errorf("nats drain subscription: timed out after %s", q.drainTimeout)
	}
	return nil
}

func encodeDocument(doc *domain.UploadedDocument) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("encode document: nil document")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return payload, nil
}

func decodeDocument(data []byte) (*domain.UploadedDocument, error) {
	var doc domain.UploadedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.ID == "" || doc.Key == "" {
		return nil, errors.New("decode document: missing id or key")
	}
	return &doc, nil
}
