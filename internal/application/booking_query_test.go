package application_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/internal/application"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partitionFixture struct {
	*fixture
	owner, booker uuid.UUID
	current       *bookingDomain.Booking
	latest        *bookingDomain.Booking
	// tied start at the same instant, in insertion order.
	tied []*bookingDomain.Booking
}

// seedPartitions stores bookings for one owner and one booker across every window,
// plus noise from other users, and returns the fixture.
func seedPartitions(t *testing.T) partitionFixture {
	f := newFixture(t)
	owner, booker := uuid.New(), uuid.New()
	first, second := f.addItem(t, owner, true), f.addItem(t, owner, true)
	foreign := f.addItem(t, uuid.New(), true)

	h := time.Hour
	f.addBooking(t, first.ID(), booker, -72*h, -48*h, bookingDomain.StatusApproved)
	f.addBooking(t, second.ID(), booker, -72*h, -24*h, bookingDomain.StatusRejected)
	current := f.addBooking(t, first.ID(), booker, -h, h, bookingDomain.StatusApproved)
	tiedA := f.addBooking(t, second.ID(), uuid.New(), 24*h, 48*h, bookingDomain.StatusWaiting)
	latest := f.addBooking(t, first.ID(), booker, 96*h, 120*h, bookingDomain.StatusWaiting)
	tiedB := f.addBooking(t, second.ID(), booker, 24*h, 25*h, bookingDomain.StatusRejected)
	tiedC := f.addBooking(t, first.ID(), uuid.New(), 24*h, 30*h, bookingDomain.StatusWaiting)
	// Outside both users' views.
	f.addBooking(t, foreign.ID(), uuid.New(), -h, h, bookingDomain.StatusApproved)

	return partitionFixture{
		fixture: f,
		owner:   owner,
		booker:  booker,
		current: current,
		latest:  latest,
		tied:    []*bookingDomain.Booking{tiedA, tiedB, tiedC},
	}
}

func (p partitionFixture) list(t *testing.T, role bookingDomain.Role, state bookingDomain.State) []application.BookingDTO {
	t.Helper()
	var (
		got []application.BookingDTO
		err error
	)
	if role == bookingDomain.RoleOwner {
		got, err = p.bookings.ListOwnerBookings(p.ctx, p.owner, string(state))
	} else {
		got, err = p.bookings.ListBookerBookings(p.ctx, p.booker, string(state))
	}
	require.NoError(t, err)
	return got
}

func TestBookingQuery_TimePartitionsCoverAllWithoutDuplicates(t *testing.T) {
	p := seedPartitions(t)

	for _, role := range []bookingDomain.Role{bookingDomain.RoleBooker, bookingDomain.RoleOwner} {
		t.Run(string(role), func(t *testing.T) {
			all := bookingIDs(p.list(t, role, bookingDomain.StateAll))
			require.NotEmpty(t, all)

			seen := map[uuid.UUID]int{}
			for _, state := range []bookingDomain.State{bookingDomain.StateCurrent, bookingDomain.StatePast, bookingDomain.StateFuture} {
				for _, id := range bookingIDs(p.list(t, role, state)) {
					seen[id]++
				}
			}

			assert.Len(t, seen, len(all))
			for _, id := range all {
				assert.Equal(t, 1, seen[id], "booking %s must fall in exactly one time partition", id)
			}
		})
	}
}

func TestBookingQuery_ResultsSortedByStartDescending(t *testing.T) {
	p := seedPartitions(t)

	for _, role := range []bookingDomain.Role{bookingDomain.RoleBooker, bookingDomain.RoleOwner} {
		for _, state := range bookingDomain.States {
			got := p.list(t, role, state)
			for i := 1; i < len(got); i++ {
				assert.False(t, got[i].Start.Time().After(got[i-1].Start.Time()),
					"%s/%s out of order at %d", role, state, i)
			}
		}
	}
}

func TestBookingQuery_EqualStartsKeepInsertionOrder(t *testing.T) {
	p := seedPartitions(t)

	future := p.list(t, bookingDomain.RoleOwner, bookingDomain.StateFuture)

	want := []uuid.UUID{p.latest.ID()}
	for _, b := range p.tied {
		want = append(want, b.ID())
	}
	assert.Equal(t, want, bookingIDs(future))
}

func TestBookingQuery_StatusStates(t *testing.T) {
	p := seedPartitions(t)

	for _, dto := range p.list(t, bookingDomain.RoleOwner, bookingDomain.StateWaiting) {
		assert.Equal(t, "WAITING", dto.Status)
	}
	assert.Len(t, p.list(t, bookingDomain.RoleOwner, bookingDomain.StateWaiting), 3)
	assert.Len(t, p.list(t, bookingDomain.RoleBooker, bookingDomain.StateWaiting), 1)
	assert.Len(t, p.list(t, bookingDomain.RoleBooker, bookingDomain.StateRejected), 2)
	assert.Len(t, p.list(t, bookingDomain.RoleOwner, bookingDomain.StateRejected), 2)
}

func TestBookingQuery_OwnerCurrentReturnsTheActiveBooking(t *testing.T) {
	p := seedPartitions(t)

	got := p.list(t, bookingDomain.RoleOwner, bookingDomain.StateCurrent)
	require.Len(t, got, 1)
	assert.Equal(t, p.current.ID(), got[0].ID)
	assert.NotEmpty(t, got[0].Item.Name)
}

func TestBookingQuery_DefaultsToAllAndRejectsUnknownState(t *testing.T) {
	p := seedPartitions(t)

	byDefault, err := p.bookings.ListBookerBookings(p.ctx, p.booker, "")
	require.NoError(t, err)
	assert.Equal(t, p.list(t, bookingDomain.RoleBooker, bookingDomain.StateAll), byDefault)

	for _, list := range []func() ([]application.BookingDTO, error){
		func() ([]application.BookingDTO, error) { return p.bookings.ListBookerBookings(p.ctx, p.booker, "SOMETIMES") },
		func() ([]application.BookingDTO, error) { return p.bookings.ListOwnerBookings(p.ctx, p.owner, "SOMETIMES") },
	} {
		_, err := list()
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
		assert.Equal(t, "Unknown state: SOMETIMES", err.Error())
	}

	_, err = p.bookings.ListBookerBookings(p.ctx, p.booker, "current")
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	assert.Equal(t, "Unknown state: current", err.Error())
}

func TestBookingQuery_OwnerWithoutItemsSeesNothing(t *testing.T) {
	p := seedPartitions(t)

	for _, state := range bookingDomain.States {
		got, err := p.bookings.ListOwnerBookings(p.ctx, uuid.New(), string(state))
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}
