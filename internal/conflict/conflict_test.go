package conflict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type storedBooking struct {
	id      int64
	venueID int64
	start   time.Time
	end     time.Time
	status  string
}

// memStore evaluates probes the way the SQL store does, over in-memory rows.
type memStore struct {
	citizen []storedBooking
	course  []storedBooking
}

func (m *memStore) CitizenBookingOverlaps(_ context.Context, p Probe) (bool, error) {
	return match(m.citizen, p), nil
}

func (m *memStore) CourseBookingOverlaps(_ context.Context, p Probe) (bool, error) {
	return match(m.course, p), nil
}

func match(rows []storedBooking, p Probe) bool {
	for _, b := range rows {
		if b.venueID != p.VenueID || !Overlaps(p.StartAt, p.EndAt, b.start, b.end) {
			continue
		}
		if p.ExcludeID != nil && *p.ExcludeID == b.id {
			continue
		}
		if len(p.Statuses) > 0 && !contains(p.Statuses, b.status) {
			continue
		}
		if contains(p.ExcludeStatuses, b.status) {
			continue
		}
		return true
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CitizenBookingOverlaps(ctx context.Context, p Probe) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) CourseBookingOverlaps(ctx context.Context, p Probe) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 1, hour, minute, 0, 0, time.UTC)
}

func ptr(v int64) *int64 { return &v }

func TestOverlaps(t *testing.T) {
	t0, t1, t2 := at(9, 0), at(10, 0), at(11, 0)

	t.Run("Symmetric", func(t *testing.T) {
		pairs := [][4]time.Time{
			{t0, t1, t1, t2},
			{t0, t2, t1, t2},
			{at(9, 30), at(10, 30), t0, t1},
			{t0, t1, at(12, 0), at(13, 0)},
		}
		for _, p := range pairs {
			assert.Equal(t, Overlaps(p[0], p[1], p[2], p[3]), Overlaps(p[2], p[3], p[0], p[1]))
		}
	})

	t.Run("Adjacent intervals do not overlap", func(t *testing.T) {
		assert.False(t, Overlaps(t0, t1, t1, t2))
		assert.False(t, Overlaps(t1, t2, t0, t1))
	})

	t.Run("Interval overlaps itself", func(t *testing.T) {
		assert.True(t, Overlaps(t0, t1, t0, t1))
	})

	t.Run("Containment overlaps", func(t *testing.T) {
		assert.True(t, Overlaps(t0, t2, at(9, 30), at(9, 45)))
	})
}

func TestHasConflicts_Scenarios(t *testing.T) {
	store := &memStore{
		course: []storedBooking{{id: 1, venueID: 77, start: at(10, 0), end: at(11, 0), status: "aprobada"}},
	}
	d := NewDetector(store)
	ctx := context.Background()

	t.Run("Citizen request overlapping approved course booking", func(t *testing.T) {
		conflict, err := d.HasConflicts(ctx, 77, at(10, 30), at(11, 30), Options{})
		require.NoError(t, err)
		assert.True(t, conflict)
	})

	t.Run("Request starting when course booking ends", func(t *testing.T) {
		conflict, err := d.HasConflicts(ctx, 77, at(11, 0), at(12, 0), Options{})
		require.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("Other venue is free", func(t *testing.T) {
		conflict, err := d.HasConflicts(ctx, 78, at(10, 30), at(11, 30), Options{})
		require.NoError(t, err)
		assert.False(t, conflict)
	})
}

func TestHasConflicts_Filters(t *testing.T) {
	store := &memStore{
		citizen: []storedBooking{
			{id: 10, venueID: 5, start: at(9, 0), end: at(10, 0), status: "cancelada"},
			{id: 11, venueID: 5, start: at(12, 0), end: at(13, 0), status: "activa"},
		},
		course: []storedBooking{
			{id: 20, venueID: 5, start: at(15, 0), end: at(16, 0), status: "pendiente"},
			{id: 21, venueID: 5, start: at(17, 0), end: at(18, 0), status: "rechazada"},
		},
	}
	d := NewDetector(store)
	ctx := context.Background()

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		opts     Options
		expected bool
	}{
		{"Cancelled citizen booking never conflicts by default", at(9, 0), at(10, 0), Options{}, false},
		{"Active citizen booking conflicts", at(12, 30), at(13, 30), Options{}, true},
		{"Ignored citizen booking does not conflict", at(12, 30), at(13, 30), Options{IgnoreCitizenBookingID: ptr(11)}, false},
		{"Explicit citizen statuses include cancelled", at(9, 0), at(10, 0), Options{CitizenStatuses: []string{"cancelada"}}, true},
		{"Explicit citizen statuses exclude active", at(12, 0), at(13, 0), Options{CitizenStatuses: []string{"pendiente"}}, false},
		{"Empty citizen status list matches nothing", at(12, 0), at(13, 0), Options{CitizenStatuses: []string{}}, false},
		{"Skipping citizen kind", at(12, 0), at(13, 0), Options{SkipCitizenBookings: true}, false},
		{"Pending course booking holds the venue", at(15, 30), at(16, 30), Options{}, true},
		{"Ignored course booking does not conflict", at(15, 30), at(16, 30), Options{IgnoreCourseBookingID: ptr(20)}, false},
		{"Rejected course booking is free by default", at(17, 0), at(18, 0), Options{}, false},
		{"Explicit course statuses include rejected", at(17, 0), at(18, 0), Options{CourseStatuses: []string{"rechazada"}}, true},
		{"Skipping course kind", at(15, 0), at(16, 0), Options{SkipCourseBookings: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict, err := d.HasConflicts(ctx, 5, tt.start, tt.end, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, conflict)
		})
	}
}

func TestHasConflicts_InvalidInput(t *testing.T) {
	store := new(mockStore)
	d := NewDetector(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		venueID int64
		start   time.Time
		end     time.Time
	}{
		{"Missing venue", 0, at(10, 0), at(11, 0)},
		{"Zero length", 1, at(10, 0), at(10, 0)},
		{"Inverted", 1, at(11, 0), at(10, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict, err := d.HasConflicts(ctx, tt.venueID, tt.start, tt.end, Options{})
			assert.ErrorIs(t, err, ErrInvalidInterval)
			assert.False(t, conflict)
		})
	}

	store.AssertNotCalled(t, "CitizenBookingOverlaps", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CourseBookingOverlaps", mock.Anything, mock.Anything)
}

func TestHasConflicts_StoreFailureShortCircuits(t *testing.T) {
	store := new(mockStore)
	dbErr := errors.New("connection reset")
	store.On("CitizenBookingOverlaps", mock.Anything, mock.Anything).Return(false, dbErr)

	d := NewDetector(store)
	conflict, err := d.HasConflicts(context.Background(), 1, at(10, 0), at(11, 0), Options{})

	assert.ErrorIs(t, err, dbErr)
	assert.False(t, conflict)
	store.AssertNotCalled(t, "CourseBookingOverlaps", mock.Anything, mock.Anything)
}

func TestHasConflicts_CourseFailureIsNotClear(t *testing.T) {
	store := new(mockStore)
	dbErr := errors.New("timeout")
	store.On("CitizenBookingOverlaps", mock.Anything, mock.Anything).Return(false, nil)
	store.On("CourseBookingOverlaps", mock.Anything, mock.Anything).Return(false, dbErr)

	d := NewDetector(store)
	conflict, err := d.HasConflicts(context.Background(), 1, at(10, 0), at(11, 0), Options{})

	assert.ErrorIs(t, err, dbErr)
	assert.False(t, conflict)
	store.AssertExpectations(t)
}

func TestHasConflicts_CitizenHitSkipsCourseProbe(t *testing.T) {
	store := new(mockStore)
	store.On("CitizenBookingOverlaps", mock.Anything, mock.MatchedBy(func(p Probe) bool {
		return p.VenueID == 3 && len(p.ExcludeStatuses) == 1 && p.ExcludeStatuses[0] == "cancelada" && p.Statuses == nil
	})).Return(true, nil)

	d := NewDetector(store)
	conflict, err := d.HasConflicts(context.Background(), 3, at(10, 0), at(11, 0), Options{})

	require.NoError(t, err)
	assert.True(t, conflict)
	store.AssertNotCalled(t, "CourseBookingOverlaps", mock.Anything, mock.Anything)
}

func TestHasConflicts_DefaultCourseProbe(t *testing.T) {
	store := new(mockStore)
	store.On("CitizenBookingOverlaps", mock.Anything, mock.Anything).Return(false, nil)
	store.On("CourseBookingOverlaps", mock.Anything, mock.MatchedBy(func(p Probe) bool {
		return assert.ObjectsAreEqual(DefaultCourseStatuses, p.Statuses) && p.ExcludeID != nil && *p.ExcludeID == 9
	})).Return(false, nil)

	d := NewDetector(store)
	conflict, err := d.HasConflicts(context.Background(), 3, at(10, 0), at(11, 0), Options{IgnoreCourseBookingID: ptr(9)})

	require.NoError(t, err)
	assert.False(t, conflict)
	store.AssertExpectations(t)
}
