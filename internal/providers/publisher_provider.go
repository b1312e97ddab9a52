package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"aisd/internal/models"
	"aisd/internal/structures"
)

// PublisherInterface fans accepted position reports out to downstream
// consumers. Publishing is best effort; failures never block ingestion.
type PublisherInterface interface {
	PublishPosition(ctx context.Context, report models.PositionReport) error
	Close()
}

type NatsPublisher struct {
	nc      *nats.Conn
	subject string
}

func NewPublisherProvider(conf *structures.Config, logger Logger) (PublisherInterface, error) {
	if !conf.Nats.Enabled {
		return &noopPublisher{}, nil
	}

	nc, err := nats.Connect(conf.Nats.URL,
		nats.Name(conf.AppName),
		nats.PingInterval(5*time.Second),
		nats.MaxPingsOutstanding(3),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warnf(TypeIngest, "NATS disconnected: %s", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof(TypeIngest, "NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", conf.Nats.URL, err)
	}

	logger.Infof(TypeApp, "Publishing accepted positions to %s.<mmsi>", conf.Nats.Subject)
	return &NatsPublisher{nc: nc, subject: conf.Nats.Subject}, nil
}

// PositionSubject is the per-vessel subject a report is published on.
func PositionSubject(prefix string, mmsi int64) string {
	return prefix + "." + strconv.FormatInt(mmsi, 10)
}

func (p *NatsPublisher) PublishPosition(_ context.Context, report models.PositionReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode position: %w", err)
	}
	return p.nc.Publish(PositionSubject(p.subject, report.MMSI), data)
}

func (p *NatsPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

type noopPublisher struct{}

func (n *noopPublisher) PublishPosition(_ context.Context, _ models.PositionReport) error { return nil }
func (n *noopPublisher) Close()                                                          {}
