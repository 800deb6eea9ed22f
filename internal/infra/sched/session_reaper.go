package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reaper disposes idle wizard sessions.
type Reaper interface {
	ReapIdle(ctx context.Context) int
}

// SessionReaper runs Reaper.ReapIdle on an interval.
type SessionReaper struct {
	interval time.Duration
	reaper   Reaper
	log      *zerolog.Logger
}

func NewSessionReaper(interval time.Duration, reaper Reaper, logger *zerolog.Logger) *SessionReaper {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "SessionReaper").Logger()
	return &SessionReaper{interval: interval, reaper: reaper, log: &l}
}

func (s *SessionReaper) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.interval).Msg("Starting session reaper")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Stopping session reaper")
			return ctx.Err()
		case <-ticker.C:
			if n := s.reaper.ReapIdle(ctx); n > 0 {
				s.log.Debug().Int("count", n).Msg("idle sessions disposed")
			}
		}
	}
}
