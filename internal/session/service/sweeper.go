package service

import (
	"context"
	"log"
	"time"

	"campus-access-control/backend/internal/session/repository"
)

// Sweeper periodically closes guard sessions that have gone quiet. Heartbeats
// keep a session alive; without this loop an abandoned device would hold its
// checkpoint until an administrator forces it closed.
//
// A staleAfter of 0 disables sweeping entirely.
type Sweeper struct {
	repo       repository.Repository
	staleAfter time.Duration
	interval   time.Duration
	logger     *log.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// SweeperConfig holds the parameters for NewSweeper.
type SweeperConfig struct {
	// StaleAfter is how long a session may go without a heartbeat before it
	// is closed. 0 means never (sweeper will not start).
	StaleAfter time.Duration

	// Interval is how often the sweeper runs. Defaults to 5 minutes.
	Interval time.Duration
}

// NewSweeper creates a sweeper but does not start it. Call Start to begin the
// background loop.
func NewSweeper(repo repository.Repository, cfg SweeperConfig, logger *log.Logger) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		repo:       repo,
		staleAfter: cfg.StaleAfter,
		interval:   interval,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start begins the background sweep loop. It runs an immediate sweep on
// startup, then repeats on the configured interval. The loop exits when ctx
// is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	if s.staleAfter <= 0 {
		s.logger.Printf("session sweeper disabled (stale_after=0)")
		close(s.done)
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(ctx)

	s.logger.Printf("session sweeper started (stale_after=%s, interval=%s)", s.staleAfter, s.interval)
}

// Stop signals the sweeper to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()
	cutoff := now.Add(-s.staleAfter)
	closed, err := s.repo.CloseStale(ctx, cutoff, now)
	if err != nil {
		s.logger.Printf("session sweep error: %v", err)
		return
	}
	if closed > 0 {
		s.logger.Printf("session sweep: closed %d sessions idle since %s",
			closed, cutoff.Format(time.RFC3339))
	}
}
