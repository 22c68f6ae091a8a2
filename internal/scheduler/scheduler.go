package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	EvictIdleSessionsSpec = "*/10 * * * *"
	PruneSearchLogSpec    = "0 3 * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0

	SearchLogRetention = 30 * 24 * time.Hour
	pruneSearchTimeout = time.Minute
)

type SessionEvicter interface {
	EvictIdle(ttl time.Duration) int
	Len() int
}

type SearchLogPruner interface {
	PruneSearchLog(ctx context.Context, before time.Time) (int64, error)
}

type Scheduler struct {
	ctx        context.Context
	cron       *cron.Cron
	sessions   SessionEvicter
	sessionTTL time.Duration
	searchLog  SearchLogPruner
	now        func() time.Time
	log        *slog.Logger
}

func New(
	ctx context.Context,
	sessions SessionEvicter,
	sessionTTL time.Duration,
	searchLog SearchLogPruner,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:        ctx,
		cron:       c,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		searchLog:  searchLog,
		now:        time.Now,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(EvictIdleSessionsSpec, s.evictIdleSessions); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(PruneSearchLogSpec, s.pruneSearchLog); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) evictIdleSessions() {
	if s.ctx.Err() != nil {
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", s.ctx.Err())
		return
	}

	evicted := s.sessions.EvictIdle(s.sessionTTL)
	if evicted == 0 {
		return
	}

	s.log.InfoContext(s.ctx, "Idle sessions are evicted",
		"evicted", evicted,
		"remaining", s.sessions.Len(),
		"sessionTTL", s.sessionTTL.String())
}

func (s *Scheduler) pruneSearchLog() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneSearchTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	before := s.now().Add(-SearchLogRetention)

	pruned, err := s.searchLog.PruneSearchLog(ctx, before)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune search log",
			"error", err,
			"before", before)

		return
	}

	s.log.InfoContext(ctx, "Search log is pruned",
		"pruned", pruned,
		"before", before)
}
