package booking_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func TestNewBooking_StartsWaiting(t *testing.T) {
	itemID, bookerID := uuid.New(), uuid.New()

	b, err := booking.NewBooking(itemID, bookerID, base, base.Add(24*time.Hour))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID())
	assert.Equal(t, booking.StatusWaiting, b.Status())
	assert.Equal(t, itemID, b.ItemID())
	assert.Equal(t, bookerID, b.BookerID())
	assert.Equal(t, int64(1), b.Version())
}

func TestNewBooking_RejectsBadWindows(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  error
	}{
		{"zero length", base, base, booking.ErrZeroLengthBooking},
		{"end before start", base, base.Add(-time.Hour), booking.ErrEndBeforeStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := booking.NewBooking(uuid.New(), uuid.New(), tt.start, tt.end)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, domain.KindInvalidOperation, domain.KindOf(err))
		})
	}
}

func TestNewBooking_RequiresIDs(t *testing.T) {
	_, err := booking.NewBooking(uuid.Nil, uuid.New(), base, base.Add(time.Hour))
	assert.Error(t, err)

	_, err = booking.NewBooking(uuid.New(), uuid.Nil, base, base.Add(time.Hour))
	assert.Error(t, err)
}

func TestDecide(t *testing.T) {
	for _, approved := range []bool{true, false} {
		b, err := booking.NewBooking(uuid.New(), uuid.New(), base, base.Add(time.Hour))
		require.NoError(t, err)

		require.NoError(t, b.Decide(approved))
		if approved {
			assert.Equal(t, booking.StatusApproved, b.Status())
		} else {
			assert.Equal(t, booking.StatusRejected, b.Status())
		}

		// A second decision fails whatever it asks for.
		assert.ErrorIs(t, b.Decide(true), booking.ErrAlreadyDecided)
		assert.ErrorIs(t, b.Decide(false), booking.ErrAlreadyDecided)
	}
}

func TestStatus(t *testing.T) {
	assert.False(t, booking.StatusWaiting.IsTerminal())
	assert.True(t, booking.StatusApproved.IsTerminal())
	assert.True(t, booking.StatusRejected.IsTerminal())

	s, err := booking.ParseStatus("APPROVED")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusApproved, s)

	_, err = booking.ParseStatus("CANCELED")
	assert.Error(t, err)
}

func TestStatusDecide(t *testing.T) {
	next, err := booking.StatusWaiting.Decide(false)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusRejected, next)

	for _, decided := range []booking.Status{booking.StatusApproved, booking.StatusRejected} {
		_, err := decided.Decide(true)
		assert.ErrorIs(t, err, booking.ErrAlreadyDecided)
	}

	_, err = booking.Status("CANCELED").Decide(true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, booking.ErrAlreadyDecided)
	assert.Equal(t, domain.KindInvalidOperation, domain.KindOf(err))
	assert.Equal(t, "cannot transition from CANCELED to APPROVED", err.Error())
}

func TestSortByStartDesc_IsStable(t *testing.T) {
	item := uuid.New()
	mk := func(start time.Time) *booking.Booking {
		b, err := booking.NewBooking(item, uuid.New(), start, start.Add(time.Hour))
		require.NoError(t, err)
		return b
	}
	early := mk(base)
	tieA := mk(base.Add(time.Hour))
	tieB := mk(base.Add(time.Hour))
	late := mk(base.Add(2 * time.Hour))

	list := []*booking.Booking{early, tieA, late, tieB}
	booking.SortByStartDesc(list)

	assert.Equal(t, []*booking.Booking{late, tieA, tieB, early}, list)
}
