// Package maintenance runs periodic store housekeeping next to ingestion.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"aisd/internal/maintenance/interfaces"
	"aisd/internal/providers"
	"aisd/internal/storage"
	"aisd/internal/structures"
)

const jobTimeout = 5 * time.Minute

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	store   storage.Store
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	if interval := s.config.Maintenance.Interval; interval > 0 {
		s.cron.AddFunc(gron.Every(interval), func() {
			_ = s.Maintain()
		})
	}
	if interval := s.config.Maintenance.StatsInterval; interval > 0 {
		s.cron.AddFunc(gron.Every(interval), func() {
			_ = s.RefreshStats()
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Maintain checkpoints the WAL (SQLite) or refreshes planner statistics
// (PostgreSQL).
func (s *Scheduler) Maintain() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := s.store.Maintain(ctx); err != nil {
		s.logger.Errorf(providers.TypeStore, "Store maintenance failed: %s", err)
		return err
	}
	s.logger.Infof(providers.TypeStore, "Store maintenance done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// RefreshStats publishes row counts as gauges.
func (s *Scheduler) RefreshStats() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	vessels, reports, err := s.store.Counts(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Counting records failed: %s", err)
		return err
	}
	s.metrics.SetRecordsTotal("vessels", vessels)
	s.metrics.SetRecordsTotal("position_reports", reports)
	s.logger.Debugf(providers.TypeStore, "Store holds %d vessels and %d position reports", vessels, reports)
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, store storage.Store, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		store:   store,
		metrics: metrics,
	}
}
