package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/okian/apmboard/internal/domain/model"
	"github.com/okian/apmboard/pkg/logger"
	"github.com/okian/apmboard/pkg/metrics"
)

const defaultConnectTimeout = 5 * time.Second

// NATSPublisher publishes JSON payloads on core NATS subjects.
type NATSPublisher struct {
	conn   *nats.Conn
	logger logger.Logger
}

// NewNATS connects to url.
func NewNATS(url string, l logger.Logger) (*NATSPublisher, error) {
	if l == nil {
		l = logger.Nop()
	}
	opts := []nats.Option{
		nats.Name("apmboard"),
		nats.Timeout(defaultConnectTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: l}, nil
}

func (p *NATSPublisher) PublishJobChange(ctx context.Context, change JobChange) error {
	return p.publish(ctx, SubjectJobsChanged, change)
}

func (p *NATSPublisher) PublishEvent(ctx context.Context, event model.AnalyticsEvent) error {
	return p.publish(ctx, SubjectAnalyticsEvents, event)
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		metrics.RecordPublish(subject, "error")
		return fmt.Errorf("marshaling %s payload: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		metrics.RecordPublish(subject, "error")
		p.logger.Error(ctx, "failed to publish", logger.String("subject", subject), logger.Error(err))
		return fmt.Errorf("publishing to NATS: %w", err)
	}
	metrics.RecordPublish(subject, "success")
	p.logger.Debug(ctx, "published", logger.String("subject", subject), logger.Int("bytes", len(data)))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Flush(); err != nil {
		p.conn.Close()
		return err
	}
	p.conn.Close()
	return nil
}
