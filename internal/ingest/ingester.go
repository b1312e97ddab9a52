package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"

	"aisd/internal/models"
	"aisd/internal/providers"
	"aisd/internal/storage"
	"aisd/internal/structures"
)

type IngesterInterface interface {
	Run(ctx context.Context) error
	Status() Status
}

// Status is a point-in-time view of the ingestion loop for /health.
type Status struct {
	Connected      bool      `json:"connected"`
	LastMessageAt  time.Time `json:"last_message_at"`
	TrackedVessels int64     `json:"tracked_vessels"`
	Messages       int64     `json:"messages"`
	Stored         int64     `json:"stored"`
	Reconnects     int64     `json:"reconnects"`
}

// Ingester owns the stream connection and the rate limiter. Run must be
// called from exactly one goroutine.
type Ingester struct {
	dialer         StreamDialer
	store          storage.Writer
	limiter        *RateLimiter
	normalizer     *TimestampNormalizer
	publisher      providers.PublisherInterface
	metrics        providers.MetricsProviderInterface
	logger         providers.Logger
	subscription   []byte
	reconnectDelay time.Duration
	readTimeout    time.Duration

	connected   atomic.Bool
	lastMessage atomic.Time
	tracked     atomic.Int64
	messages    atomic.Int64
	stored      atomic.Int64
	reconnects  atomic.Int64
}

func NewIngester(
	conf *structures.Config,
	dialer StreamDialer,
	store storage.Writer,
	publisher providers.PublisherInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) (*Ingester, error) {
	sub, err := NewSubscription(conf.Stream).Encode()
	if err != nil {
		return nil, fmt.Errorf("encode subscription: %w", err)
	}
	return &Ingester{
		dialer:         dialer,
		store:          store,
		limiter:        NewRateLimiter(conf.Ingest.MinInterval),
		normalizer:     NewTimestampNormalizer(logger),
		publisher:      publisher,
		metrics:        metrics,
		logger:         logger,
		subscription:   sub,
		reconnectDelay: conf.Stream.ReconnectDelay,
		readTimeout:    conf.Stream.ReadTimeout,
	}, nil
}

// NewIngesterProvider wires an ingester to the configured websocket endpoint.
func NewIngesterProvider(
	conf *structures.Config,
	store storage.Store,
	publisher providers.PublisherInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) (IngesterInterface, error) {
	return NewIngester(conf, NewWebsocketDialer(conf.Stream.URL), store, publisher, metrics, logger)
}

func (in *Ingester) Status() Status {
	return Status{
		Connected:      in.connected.Load(),
		LastMessageAt:  in.lastMessage.Load(),
		TrackedVessels: in.tracked.Load(),
		Messages:       in.messages.Load(),
		Stored:         in.stored.Load(),
		Reconnects:     in.reconnects.Load(),
	}
}

// Run seeds the rate limiter from storage, then consumes the stream until
// ctx is cancelled. Connection faults are retried after a fixed delay.
func (in *Ingester) Run(ctx context.Context) error {
	last, err := in.store.LastReportTimes(ctx)
	if err != nil {
		return fmt.Errorf("seed rate limiter: %w", err)
	}
	in.limiter.Seed(last)
	in.tracked.Store(int64(in.limiter.Len()))
	in.logger.Infof(providers.TypeIngest, "Rate limiter seeded with %d vessels", in.limiter.Len())

	for {
		err := in.session(ctx)
		in.setConnected(false)
		if ctx.Err() != nil {
			in.logger.Infof(providers.TypeIngest, "Ingestion stopped")
			return nil
		}

		in.logger.Warnf(providers.TypeIngest, "Stream connection lost: %v; reconnecting in %s", err, in.reconnectDelay)
		timer := time.NewTimer(in.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			in.logger.Infof(providers.TypeIngest, "Ingestion stopped")
			return nil
		case <-timer.C:
		}
		in.reconnects.Inc()
		in.metrics.IncReconnects()
	}
}

func (in *Ingester) setConnected(v bool) {
	in.connected.Store(v)
	in.metrics.SetStreamConnected(v)
}

func (in *Ingester) session(ctx context.Context) error {
	conn, err := in.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Send(ctx, in.subscription); err != nil {
		return fmt.Errorf("send subscription: %w", err)
	}
	in.setConnected(true)
	in.logger.Infof(providers.TypeIngest, "Subscribed to stream")

	for {
		data, err := in.receive(ctx, conn)
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		in.handle(ctx, data)
	}
}

func (in *Ingester) receive(ctx context.Context, conn StreamConn) ([]byte, error) {
	if in.readTimeout <= 0 {
		return conn.Receive(ctx)
	}
	rctx, cancel := context.WithTimeout(ctx, in.readTimeout)
	defer cancel()
	return conn.Receive(rctx)
}

func (in *Ingester) handle(ctx context.Context, data []byte) {
	msg, err := DecodeMessage(data)
	if err != nil {
		in.metrics.IncMessageErrors("decode")
		var streamErr *StreamError
		if errors.As(err, &streamErr) {
			in.logger.Errorf(providers.TypeIngest, "%v", err)
			return
		}
		in.logger.Warnf(providers.TypeIngest, "Skipping message: %v", err)
		return
	}

	in.messages.Inc()
	in.lastMessage.Store(time.Now())
	in.metrics.IncMessages(msg.MessageType())

	switch m := msg.(type) {
	case PositionMessage:
		in.handlePosition(ctx, m)
	case StaticDataMessage:
		in.handleStaticData(ctx, m)
	case UnknownMessage:
		in.logger.Debugf(providers.TypeIngest, "Ignoring message type %q", m.Type)
	}
}

func (in *Ingester) handlePosition(ctx context.Context, m PositionMessage) {
	report := models.PositionReport{
		MMSI:      m.MMSI,
		Timestamp: in.normalizer.Normalize(m.ReceivedAt),
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
	}
	if !in.limiter.Admit(report.MMSI, report.Timestamp) {
		in.metrics.IncPositions(providers.PositionThrottled)
		return
	}

	start := time.Now()
	inserted, err := in.store.InsertPosition(ctx, report)
	in.metrics.ObserveStoreWriteDuration(time.Since(start))
	if err != nil {
		in.metrics.IncPositions(providers.PositionFailed)
		in.logger.Errorf(providers.TypeStore, "Insert position for %d: %v", report.MMSI, err)
		return
	}

	in.limiter.Accept(report.MMSI, report.Timestamp)
	in.tracked.Store(int64(in.limiter.Len()))
	if !inserted {
		in.metrics.IncPositions(providers.PositionDuplicate)
		return
	}
	in.stored.Inc()
	in.metrics.IncPositions(providers.PositionAccepted)

	if err := in.publisher.PublishPosition(ctx, report); err != nil {
		in.logger.Warnf(providers.TypeIngest, "Publish position for %d: %v", report.MMSI, err)
	}
}

func (in *Ingester) handleStaticData(ctx context.Context, m StaticDataMessage) {
	if err := in.store.UpsertVessel(ctx, m.Vessel); err != nil {
		in.metrics.IncMessageErrors("store")
		in.logger.Errorf(providers.TypeStore, "Upsert vessel %d: %v", m.Vessel.MMSI, err)
	}
}
