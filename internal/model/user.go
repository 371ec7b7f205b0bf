package model

import "time"

// User is an account of the remote service.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionUser is the persisted current user of this client. There is at most one row.
type SessionUser struct {
	Slot      int    `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64  `gorm:"not null"`
	Name      string `gorm:"size:256"`
	Email     string `gorm:"size:256"`
	UpdatedAt time.Time
}
