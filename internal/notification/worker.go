package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"meeting-room-client/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the local store the workers need.
type SubscriptionStore interface {
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Payload is the JSON body delivered to the browser's service worker.
type Payload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	BookingID int64  `json:"booking_id"`
}

// WorkerPool manages a pool of workers that push booking reminders.
type WorkerPool struct {
	size    int
	jobs    chan model.Booking
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	loc     *time.Location
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool. loc is used to print times in notifications.
func NewWorkerPool(size int, subs SubscriptionStore, webpushOptions *webpush.Options, loc *time.Location, log *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if loc == nil {
		loc = time.Local
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.Booking, size),
		store:   subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		loc:     loc,
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case b := <-wp.jobs:
			wp.notifyOwner(ctx, b)
		case <-ctx.Done():
			wp.log.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a reminder for b. It blocks while the queue is full and gives up when ctx ends.
func (wp *WorkerPool) Dispatch(ctx context.Context, b model.Booking) error {
	select {
	case wp.jobs <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.Booking {
	return wp.jobs
}

// BuildPayload renders the reminder for b.
func BuildPayload(b model.Booking, loc *time.Location) ([]byte, error) {
	room := b.RoomName
	if room == "" {
		room = fmt.Sprintf("#%d", b.RoomID)
	}
	return json.Marshal(Payload{
		Title:     "Meeting in progress",
		Body:      fmt.Sprintf("%s in %s until %s", b.Title, room, b.End.In(loc).Format("15:04")),
		BookingID: b.ID,
	})
}

func (wp *WorkerPool) notifyOwner(ctx context.Context, b model.Booking) {
	subscriptions, err := wp.store.SubscriptionsForUser(ctx, b.UserID)
	if err != nil {
		wp.log.Error("error fetching subscriptions", zap.Int64("user_id", b.UserID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := BuildPayload(b, wp.loc)
	if err != nil {
		wp.log.Error("failed to encode notification", zap.Int64("booking_id", b.ID), zap.Error(err))
		return
	}

	wp.log.Info("sending booking reminders", zap.Int64("booking_id", b.ID), zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("error sending notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Expired or unsubscribed endpoints are removed.
	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		wp.log.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
