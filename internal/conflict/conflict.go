// Package conflict decides whether a proposed venue time block collides with
// existing citizen bookings (reservas) or course bookings (curso_reservas).
//
// Intervals are half-open: [start, end). Back-to-back bookings never collide.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/metrics"
)

var ErrInvalidInterval = errors.New("invalid venue or time interval")

const statusCancelled = "cancelada"

// DefaultCourseStatuses are the course booking statuses that hold a venue when
// the caller does not pass its own list.
var DefaultCourseStatuses = []string{"pendiente", "aprobada"}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Options narrows a conflict check. The zero value scans both booking kinds
// with the default status filters.
//
// CitizenStatuses nil means every status except cancelada. CourseStatuses nil
// means DefaultCourseStatuses. A non-nil empty list matches nothing.
type Options struct {
	IgnoreCitizenBookingID *int64
	IgnoreCourseBookingID  *int64

	SkipCitizenBookings bool
	SkipCourseBookings  bool

	CitizenStatuses []string
	CourseStatuses  []string
}

// Probe is one bounded existence query against a booking table.
type Probe struct {
	VenueID         int64
	StartAt         time.Time
	EndAt           time.Time
	ExcludeID       *int64
	Statuses        []string
	ExcludeStatuses []string
}

type Store interface {
	CitizenBookingOverlaps(ctx context.Context, p Probe) (bool, error)
	CourseBookingOverlaps(ctx context.Context, p Probe) (bool, error)
}

type Checker interface {
	HasConflicts(ctx context.Context, venueID int64, startAt, endAt time.Time, opts Options) (bool, error)
}

type Detector struct {
	store Store
}

func NewDetector(store Store) *Detector {
	return &Detector{store: store}
}

// HasConflicts returns true when at least one booking of an enabled kind
// overlaps [startAt, endAt) on the venue. A store failure is returned as
// (false, err) and the remaining kind is not probed.
func (d *Detector) HasConflicts(ctx context.Context, venueID int64, startAt, endAt time.Time, opts Options) (bool, error) {
	if venueID <= 0 || !startAt.Before(endAt) {
		return false, ErrInvalidInterval
	}

	conflict, err := d.check(ctx, venueID, startAt, endAt, opts)
	switch {
	case err != nil:
		metrics.RecordConflictCheck("error")
		logger.WithContext(ctx).Error("conflict check failed", "recinto_id", venueID, "error", err)
		return false, err
	case conflict:
		metrics.RecordConflictCheck("conflict")
	default:
		metrics.RecordConflictCheck("clear")
	}
	return conflict, nil
}

func (d *Detector) check(ctx context.Context, venueID int64, startAt, endAt time.Time, opts Options) (bool, error) {
	if !opts.SkipCitizenBookings {
		p, ok := citizenProbe(venueID, startAt, endAt, opts)
		if ok {
			found, err := d.store.CitizenBookingOverlaps(ctx, p)
			if err != nil {
				return false, fmt.Errorf("citizen bookings: %w", err)
			}
			if found {
				return true, nil
			}
		}
	}

	if !opts.SkipCourseBookings {
		p, ok := courseProbe(venueID, startAt, endAt, opts)
		if ok {
			found, err := d.store.CourseBookingOverlaps(ctx, p)
			if err != nil {
				return false, fmt.Errorf("course bookings: %w", err)
			}
			return found, nil
		}
	}

	return false, nil
}

func citizenProbe(venueID int64, startAt, endAt time.Time, opts Options) (Probe, bool) {
	p := Probe{VenueID: venueID, StartAt: startAt, EndAt: endAt, ExcludeID: opts.IgnoreCitizenBookingID}
	switch {
	case opts.CitizenStatuses == nil:
		p.ExcludeStatuses = []string{statusCancelled}
	case len(opts.CitizenStatuses) == 0:
		return Probe{}, false
	default:
		p.Statuses = opts.CitizenStatuses
	}
	return p, true
}

func courseProbe(venueID int64, startAt, endAt time.Time, opts Options) (Probe, bool) {
	p := Probe{VenueID: venueID, StartAt: startAt, EndAt: endAt, ExcludeID: opts.IgnoreCourseBookingID}
	switch {
	case opts.CourseStatuses == nil:
		p.Statuses = DefaultCourseStatuses
	case len(opts.CourseStatuses) == 0:
		return Probe{}, false
	default:
		p.Statuses = opts.CourseStatuses
	}
	return p, true
}
