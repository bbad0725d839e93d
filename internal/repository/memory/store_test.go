package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-platform/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/repository/memory"
	"github.com/shareit-platform/service-booking/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ bookingDomain.BookingRepository     = (*memory.BookingRepository)(nil)
	_ itemDomain.ItemRepository           = (*memory.ItemRepository)(nil)
	_ commentDomain.CommentRepository     = (*memory.CommentRepository)(nil)
	_ requestDomain.ItemRequestRepository = (*memory.RequestRepository)(nil)
)

func TestBookings_FindOrdersByStartDescThenInsertion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	owner := uuid.New()

	it, err := itemDomain.NewItem(owner, "Tent", "Two person tent", true)
	require.NoError(t, err)
	require.NoError(t, store.Items().Save(ctx, it))

	base := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	var saved []*bookingDomain.Booking
	for _, offset := range []time.Duration{0, 48 * time.Hour, 48 * time.Hour, 24 * time.Hour} {
		b, err := bookingDomain.NewBooking(it.ID(), uuid.New(), base.Add(offset), base.Add(offset+time.Hour))
		require.NoError(t, err)
		require.NoError(t, store.Bookings().Save(ctx, b))
		saved = append(saved, b)
	}

	got, err := store.Bookings().Find(ctx, bookingDomain.Filter{OwnerID: owner})
	require.NoError(t, err)
	require.Len(t, got, 4)

	ids := []uuid.UUID{got[0].ID(), got[1].ID(), got[2].ID(), got[3].ID()}
	assert.Equal(t, []uuid.UUID{saved[1].ID(), saved[2].ID(), saved[3].ID(), saved[0].ID()}, ids)

	none, err := store.Bookings().Find(ctx, bookingDomain.Filter{OwnerID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookings_UpdateIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Bookings()

	b, err := bookingDomain.NewBooking(uuid.New(), uuid.New(), time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b))

	first, _ := repo.FindByID(ctx, b.ID())
	second, _ := repo.FindByID(ctx, b.ID())

	require.NoError(t, first.Decide(true))
	first.IncrementVersion()
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, second.Decide(false))
	second.IncrementVersion()
	err = repo.Update(ctx, second)
	assert.True(t, domain.IsConflict(err))

	stored, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusApproved, stored.Status())
}

func TestBookings_FindByIDMissing(t *testing.T) {
	_, err := memory.NewStore().Bookings().FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, bookingDomain.ErrBookingNotFound)
}

func TestItems_SearchAndOwnership(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Items()
	owner := uuid.New()

	drill, _ := itemDomain.NewItem(owner, "Drill", "Cordless drill", true)
	saw, _ := itemDomain.NewItem(owner, "Saw", "Hand saw for DRILLing jigs", false)
	other, _ := itemDomain.NewItem(uuid.New(), "Ladder", "Tall ladder", true)
	for _, it := range []*itemDomain.Item{drill, saw, other} {
		require.NoError(t, repo.Save(ctx, it))
	}

	found, err := repo.Search(ctx, "drill")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, drill.ID(), found[0].ID())

	ids, err := repo.IDsOwnedBy(ctx, owner)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{drill.ID(), saw.ID()}, ids)

	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{other.ID(), uuid.New()})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, "Ladder", byIDs[0].Name())

	stale, _ := repo.FindByID(ctx, drill.ID())
	fresh, _ := repo.FindByID(ctx, drill.ID())
	name := "Impact drill"
	fresh.Update(&name, nil, nil)
	require.NoError(t, repo.Update(ctx, fresh))
	stale.Update(&name, nil, nil)
	assert.True(t, domain.IsConflict(repo.Update(ctx, stale)))
}

func TestComments_OldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Comments()
	itemID := uuid.New()

	for _, text := range []string{"first", "second"} {
		c, err := commentDomain.NewComment(itemID, uuid.New(), text)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
	}

	got, err := repo.FindByItemID(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text())
	assert.Equal(t, "second", got[1].Text())
}

func TestRequests_SplitByRequesterOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	alice, bob := uuid.New(), uuid.New()
	base := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	late, err := requestDomain.NewItemRequest(alice, "Need a tent", base.Add(time.Hour))
	require.NoError(t, err)
	early, err := requestDomain.NewItemRequest(alice, "Need a ladder", base)
	require.NoError(t, err)
	other, err := requestDomain.NewItemRequest(bob, "Need a kayak", base)
	require.NoError(t, err)
	for _, r := range []*requestDomain.ItemRequest{late, early, other} {
		require.NoError(t, store.Requests().Save(ctx, r))
	}

	own, err := store.Requests().FindByRequester(ctx, alice)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, early.ID(), own[0].ID())
	assert.Equal(t, late.ID(), own[1].ID())

	rest, err := store.Requests().FindExcludingRequester(ctx, alice)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, other.ID(), rest[0].ID())

	_, err = store.Requests().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, requestDomain.ErrRequestNotFound)

	answer, err := itemDomain.NewItem(uuid.New(), "Ladder", "Three meters", true)
	require.NoError(t, err)
	answer.AnswerRequest(early.ID())
	plain, err := itemDomain.NewItem(uuid.New(), "Rope", "Ten meters", true)
	require.NoError(t, err)
	require.NoError(t, store.Items().Save(ctx, answer))
	require.NoError(t, store.Items().Save(ctx, plain))

	linked, err := store.Items().FindByRequestIDs(ctx, []uuid.UUID{early.ID(), late.ID()})
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, early.ID(), linked[0].RequestID())

	empty, err := store.Items().FindByRequestIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
