package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meeting-room-client/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// sessionSlot is the primary key of the single persisted identity row.
const sessionSlot = 1

// Store defines the interface for all local database operations.
type Store interface {
	// CurrentUser returns the persisted identity, or ErrNotFound when nobody is logged in.
	CurrentUser(ctx context.Context) (model.User, error)
	SaveCurrentUser(ctx context.Context, user model.User) error
	ClearCurrentUser(ctx context.Context) error

	UpsertSubscription(ctx context.Context, sub model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)

	// MarkReminded records that bookingID was reminded. It reports false when it already was.
	MarkReminded(ctx context.Context, bookingID int64, at time.Time) (bool, error)
	// UnmarkReminded forgets the mark so the booking is reminded again.
	UnmarkReminded(ctx context.Context, bookingID int64) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CurrentUser(ctx context.Context) (model.User, error) {
	var row model.SessionUser
	err := s.db.WithContext(ctx).First(&row, "slot = ?", sessionSlot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to read current user: %w", err)
	}
	return model.User{ID: row.UserID, Name: row.Name, Email: row.Email}, nil
}

func (s *gormStore) SaveCurrentUser(ctx context.Context, user model.User) error {
	row := model.SessionUser{
		Slot:   sessionSlot,
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "name", "email", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save current user %d: %w", user.ID, err)
	}
	return nil
}

func (s *gormStore) ClearCurrentUser(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&model.SessionUser{}, sessionSlot).Error; err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	return nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PushSubscription{}, ErrNotFound
	}
	if err != nil {
		return model.PushSubscription{}, fmt.Errorf("failed to read subscription: %w", err)
	}
	return sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{}, "endpoint = ?", endpoint).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for user %d: %w", userID, err)
	}
	return subs, nil
}

func (s *gormStore) MarkReminded(ctx context.Context, bookingID int64, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.BookingReminder{BookingID: bookingID, SentAt: at})
	if res.Error != nil {
		return false, fmt.Errorf("failed to record reminder for booking %d: %w", bookingID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) UnmarkReminded(ctx context.Context, bookingID int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.BookingReminder{}, "booking_id = ?", bookingID).Error; err != nil {
		return fmt.Errorf("failed to clear reminder for booking %d: %w", bookingID, err)
	}
	return nil
}
