package backup

import (
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/rs/zerolog"
)

// DefaultSchedule fires every Sunday at 03:00.
const DefaultSchedule = "0 3 * * 0"

// Scheduler triggers archive runs on a cron expression.
type Scheduler struct {
	log      zerolog.Logger
	archiver *Archiver
	expr     string
	gron     *gronx.Gronx

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler for the given cron expression.
func NewScheduler(log zerolog.Logger, archiver *Archiver, expr string) *Scheduler {
	if expr == "" {
		expr = DefaultSchedule
	}
	return &Scheduler{
		log:      log.With().Str("component", "backup-scheduler").Logger(),
		archiver: archiver,
		expr:     expr,
		gron:     gronx.New(),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the schedule loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()
	s.log.Info().Str("schedule", s.expr).Msg("Backup scheduler started")
}

// Stop stops the loop and waits for it to exit. A backup already in
// progress runs to completion.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			due, err := s.gron.IsDue(s.expr, now)
			if err != nil {
				s.log.Error().Err(err).Msg("Invalid backup schedule")
				return
			}
			if !due {
				continue
			}
			s.log.Info().Msg("Starting weekly backup")
			path, err := s.archiver.Run()
			if err != nil {
				// Scheduled failures are reported here only; there is
				// no chat context to reply to.
				s.log.Error().Err(err).Msg("Weekly backup failed")
				continue
			}
			s.log.Info().Str("path", path).Msg("Weekly backup finished")
		}
	}
}
