package feed

import (
	"sync"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
)

// Session is one statistics watch over a company's data. Close is the only
// teardown path; it is safe to call from any lifecycle event and safe to
// call more than once.
type Session struct {
	CompanyID string

	set  *ListenerSet
	once sync.Once
}

func NewSession(companyID string, set *ListenerSet) *Session {
	return &Session{
		CompanyID: companyID,
		set:       set,
	}
}

// Snapshot returns a copy of the current counters.
func (s *Session) Snapshot() models.CompanyStatistics {
	return s.set.Snapshot()
}

// Status returns the last error per key for keys currently in error.
func (s *Session) Status() map[string]error {
	return s.set.Status()
}

// Close tears the session down: every subscription is cancelled and no
// further snapshot ever mutates the session's counters.
func (s *Session) Close() {
	s.once.Do(s.set.Close)
}
