package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"meeting-room-client/config"
	"meeting-room-client/internal/model"
)

// BookingSource lists the bookings running at a given instant.
type BookingSource interface {
	Ongoing(now time.Time) []model.Booking
}

// Marker remembers which bookings were already reminded.
type Marker interface {
	MarkReminded(ctx context.Context, bookingID int64, at time.Time) (bool, error)
	UnmarkReminded(ctx context.Context, bookingID int64) error
}

// Dispatcher queues a reminder for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, b model.Booking) error
}

// Service pushes one reminder per booking once it is under way.
type Service struct {
	cfg        config.ReminderConfig
	bookings   BookingSource
	marker     Marker
	dispatcher Dispatcher
	log        *zap.Logger
	now        func() time.Time
}

// NewService creates a reminder service.
func NewService(cfg config.ReminderConfig, bookings BookingSource, marker Marker, dispatcher Dispatcher, log *zap.Logger) *Service {
	return &Service{
		cfg:        cfg,
		bookings:   bookings,
		marker:     marker,
		dispatcher: dispatcher,
		log:        log,
		now:        time.Now,
	}
}

// Run checks for ongoing bookings every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info("reminders are disabled, not starting")
		return
	}
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	s.log.Info("starting reminder service", zap.Duration("interval", interval))

	s.CheckOnce(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder service shutting down")
			return
		case <-timer.C:
			s.CheckOnce(ctx)
			timer.Reset(interval)
		}
	}
}

// CheckOnce dispatches reminders for ongoing bookings not reminded before and returns how many
// were dispatched. A booking is marked before it is queued and unmarked when queueing fails.
func (s *Service) CheckOnce(ctx context.Context) int {
	now := s.now()
	dispatched := 0
	for _, b := range s.bookings.Ongoing(now) {
		first, err := s.marker.MarkReminded(ctx, b.ID, now)
		if err != nil {
			s.log.Error("failed to record reminder", zap.Int64("booking_id", b.ID), zap.Error(err))
			continue
		}
		if !first {
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, b); err != nil {
			s.log.Warn("reminder not dispatched", zap.Int64("booking_id", b.ID), zap.Error(err))
			// The mark must not outlive a reminder that was never queued, even on shutdown.
			if err := s.marker.UnmarkReminded(context.WithoutCancel(ctx), b.ID); err != nil {
				s.log.Error("failed to clear reminder mark", zap.Int64("booking_id", b.ID), zap.Error(err))
			}
			return dispatched
		}
		dispatched++
	}
	if dispatched > 0 {
		s.log.Info("dispatched booking reminders", zap.Int("count", dispatched))
	}
	return dispatched
}
