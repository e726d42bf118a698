package entity

import (
	"time"
)

// Notification is a fan-out alert created alongside task mutations.
// ReadBy collects the user ids that have marked it read.
type Notification struct {
	ID        string
	TaskID    string
	TaskTitle string
	Text      string
	NotiType  string // alert, message
	Team      []string
	ReadBy    []string
	CreatedAt time.Time
}
