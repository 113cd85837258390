package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically deletes expired staged media
type Sweeper struct {
	store    *MediaStore
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
	stop     chan struct{}
}

// NewSweeper creates a sweeper that runs at half the staging TTL
func NewSweeper(store *MediaStore, ttl time.Duration, logger *zap.Logger) *Sweeper {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Sweeper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called
func (s *Sweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop
func (s *Sweeper) Stop() {
	close(s.stop)
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.store.SweepExpired(ctx, s.ttl)
	if err != nil {
		s.logger.Warn("media sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("removed expired staged media", zap.Int("count", removed))
	}
}
