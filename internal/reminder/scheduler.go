package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/metrics"
)

// Sink realizes planned alerts. Schedule overwrites any pending reminder
// under the same key, which makes rescheduling after an edit duplicate-free.
type Sink interface {
	Schedule(ctx context.Context, key string, deliverAt time.Time, title, body string) error
	ScheduleImmediate(ctx context.Context, key, title, body string) error
	Cancel(ctx context.Context, key string) error
}

// Scheduler plans and realizes expiry reminders for vehicles. Kinds are
// isolated: a sink failure on one kind never blocks the other.
type Scheduler struct {
	sink Sink
	log  logger.Logger
	now  func() time.Time
}

func NewScheduler(sink Sink, log logger.Logger) *Scheduler {
	return &Scheduler{
		sink: sink,
		log:  log,
		now:  time.Now,
	}
}

// ScheduleVehicle (re)schedules both expiry kinds for a vehicle. Calling it
// again with unchanged dates produces the same key set; keys the new plan
// does not emit are cancelled so an expiry edit leaves no stale alert
// pending.
func (s *Scheduler) ScheduleVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	ctx = wrap.WithAction(wrap.WithCompanyID(ctx, vehicle.CompanyID), "schedule_vehicle_reminders")

	var errs []error

	kinds := []struct {
		kind   Kind
		expiry time.Time
	}{
		{KindInsurance, vehicle.InsuranceExpiryDate},
		{KindInspection, vehicle.InspectionExpiryDate},
	}

	for _, k := range kinds {
		if err := s.scheduleKind(ctx, vehicle, k.kind, k.expiry); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k.kind, err))
		}
	}

	if len(errs) > 0 {
		return wrap.Error(ctx, errors.Join(errs...))
	}

	return nil
}

func (s *Scheduler) scheduleKind(ctx context.Context, vehicle *models.Vehicle, kind Kind, expiry time.Time) error {
	if expiry.IsZero() {
		// Nothing tracked for this kind; clear whatever may be pending.
		s.cancelKeys(ctx, CandidateKeys(vehicle.ID, kind), nil)
		return nil
	}

	plan := Plan(vehicle.ID, vehicle.PlateNumber, kind, expiry, s.now())

	var errs []error
	emitted := make(map[string]struct{}, len(plan))

	for _, alert := range plan {
		emitted[alert.Key] = struct{}{}

		var err error
		if alert.Immediate {
			err = s.sink.ScheduleImmediate(ctx, alert.Key, alert.Title, alert.Body)
			if err == nil {
				metrics.RemindersImmediateTotal.WithLabelValues(types.ServiceName, string(kind)).Inc()
			}
		} else {
			err = s.sink.Schedule(ctx, alert.Key, alert.DeliverAt, alert.Title, alert.Body)
			if err == nil {
				metrics.RemindersScheduledTotal.WithLabelValues(types.ServiceName, string(kind)).Inc()
			}
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("key %s: %w", alert.Key, err))
		}
	}

	// An earlier plan may have scheduled offsets this one no longer emits
	// (the expiry moved closer, or passed entirely).
	s.cancelKeys(ctx, CandidateKeys(vehicle.ID, kind), emitted)

	return errors.Join(errs...)
}

// cancelKeys best-effort cancels every candidate key not in keep. Cancel
// failures are logged, not propagated: a stale alert is preferable to
// blocking the reschedule.
func (s *Scheduler) cancelKeys(ctx context.Context, candidates []string, keep map[string]struct{}) {
	for _, key := range candidates {
		if _, ok := keep[key]; ok {
			continue
		}
		if err := s.sink.Cancel(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to cancel stale reminder",
				"key", key,
				"err", err.Error(),
			)
		}
	}
}
