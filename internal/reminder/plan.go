// Package reminder computes expiry alerts for entities with future
// deadlines. Planning is a pure function of (subject, expiry dates, now);
// keys are deterministic so repeated scheduling overwrites instead of
// duplicating.
package reminder

import (
	"fmt"
	"time"
)

// Kind is an independently tracked expiry on a subject.
type Kind string

const (
	KindInsurance  Kind = "insurance"
	KindInspection Kind = "inspection"
)

// Label is the human-facing name used in alert texts.
func (k Kind) Label() string {
	switch k {
	case KindInsurance:
		return "Insurance"
	case KindInspection:
		return "Inspection"
	default:
		return string(k)
	}
}

// Offsets are the warning points, in days before expiry, in the order they
// are planned.
var Offsets = []int{30, 7, 1, 0}

// deliveryHour is the local hour alerts are delivered at.
const deliveryHour = 9

// Alert is one planned reminder. Immediate alerts bypass the delivery-hour
// rule and are delivered right away.
type Alert struct {
	Key       string
	DeliverAt time.Time
	Immediate bool
	Title     string
	Body      string
}

// Key builds the deterministic reminder key for a warning offset.
func Key(subjectID string, kind Kind, offset int) string {
	return fmt.Sprintf("%s:%s:%dd", subjectID, kind, offset)
}

// ExpiredKey builds the deterministic key for the one-time missed-deadline
// alert. It carries no date component: re-editing an expiry that is still in
// the past schedules the same key again and the sink's overwrite semantics
// keep it single.
func ExpiredKey(subjectID string, kind Kind) string {
	return fmt.Sprintf("%s:%s:expired", subjectID, kind)
}

// CandidateKeys lists every key Plan can ever emit for a (subject, kind)
// pair. Used to cancel stale alerts after an expiry date edit.
func CandidateKeys(subjectID string, kind Kind) []string {
	keys := make([]string, 0, len(Offsets)+1)
	for _, offset := range Offsets {
		keys = append(keys, Key(subjectID, kind, offset))
	}
	return append(keys, ExpiredKey(subjectID, kind))
}

// Plan computes the alert set for one (kind, expiry) pair. Warning offsets
// already in the past emit nothing, except offset zero: an expiry whose
// delivery slot has already elapsed produces a single immediate alert so the
// user still learns the deadline was missed.
func Plan(subjectID, label string, kind Kind, expiry, now time.Time) []Alert {
	var alerts []Alert

	for _, offset := range Offsets {
		candidate := triggerAt(expiry, offset)

		if candidate.After(now) {
			alerts = append(alerts, Alert{
				Key:       Key(subjectID, kind, offset),
				DeliverAt: candidate,
				Title:     fmt.Sprintf("%s expiring", kind.Label()),
				Body:      offsetBody(label, kind, offset),
			})
			continue
		}

		if offset == 0 {
			alerts = append(alerts, Alert{
				Key:       ExpiredKey(subjectID, kind),
				Immediate: true,
				Title:     fmt.Sprintf("%s expired", kind.Label()),
				Body:      fmt.Sprintf("%s for vehicle %s has expired", kind.Label(), label),
			})
		}
	}

	return alerts
}

// triggerAt is the delivery slot for a warning offset: expiry minus offset
// days, at the fixed delivery hour.
func triggerAt(expiry time.Time, offset int) time.Time {
	day := expiry.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), deliveryHour, 0, 0, 0, expiry.Location())
}

func offsetBody(label string, kind Kind, offset int) string {
	switch offset {
	case 0:
		return fmt.Sprintf("%s for vehicle %s expires today", kind.Label(), label)
	case 1:
		return fmt.Sprintf("%s for vehicle %s expires tomorrow", kind.Label(), label)
	default:
		return fmt.Sprintf("%s for vehicle %s expires in %d days", kind.Label(), label, offset)
	}
}
