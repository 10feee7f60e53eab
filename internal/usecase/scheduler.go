package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

// TimeOfDay is a wall-clock publication slot.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Job is the work a scheduler firing triggers.
type Job func(ctx context.Context, trigger time.Time)

// DailyScheduler fires a job at fixed wall-clock times every day. Each firing
// recomputes the next occurrence so drift does not accumulate.
type DailyScheduler struct {
	times  []TimeOfDay
	loc    *time.Location
	clock  ports.Clock
	job    Job
	logger *slog.Logger
	stop   chan struct{}
	done   chan struct{}
}

// NewDailyScheduler builds a scheduler for the given slots; times are kept
// sorted so NextRun is deterministic.
func NewDailyScheduler(times []TimeOfDay, loc *time.Location, clock ports.Clock, job Job, logger *slog.Logger) *DailyScheduler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	sorted := make([]TimeOfDay, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Hour != sorted[j].Hour {
			return sorted[i].Hour < sorted[j].Hour
		}
		return sorted[i].Minute < sorted[j].Minute
	})
	return &DailyScheduler{times: sorted, loc: loc, clock: clock, job: job, logger: logger}
}

// NextRun returns the earliest occurrence strictly after now, rolling past
// slots to the next day.
func (s *DailyScheduler) NextRun(now time.Time) time.Time {
	now = now.In(s.loc)
	var next time.Time
	for _, slot := range s.times {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), slot.Hour, slot.Minute, 0, 0, s.loc)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}

// Start launches the timer goroutine. Calling Start twice is a no-op.
func (s *DailyScheduler) Start(ctx context.Context) error {
	if s.job == nil || len(s.times) == 0 {
		return fmt.Errorf("scheduler needs a job and at least one time slot")
	}
	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			now := s.clock.Now()
			next := s.NextRun(now)
			s.logger.Info("next scheduled run", "at", next.Format(time.RFC3339))

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.stop:
				timer.Stop()
				return
			case trigger := <-timer.C:
				// A firing runs to completion even if shutdown begins while
				// the job is in flight.
				s.job(context.WithoutCancel(ctx), trigger)
			}
		}
	}()

	return nil
}

// Stop halts the timer goroutine and waits for an in-flight job to finish.
func (s *DailyScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.stop = nil
	return nil
}
