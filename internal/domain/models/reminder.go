package models

import "time"

// ReminderMessage is the payload published to the reminders exchange when a
// scheduled alert becomes due (or immediately for already-missed deadlines).
type ReminderMessage struct {
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	DeliverAt time.Time `json:"deliver_at"`
	Immediate bool      `json:"immediate"`
}
