package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	UserID    int64     `gorm:"index;not null"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// BookingReminder records that the ongoing notice for a booking was already dispatched.
type BookingReminder struct {
	BookingID int64     `gorm:"primaryKey;autoIncrement:false"`
	SentAt    time.Time `gorm:"not null"`
}
