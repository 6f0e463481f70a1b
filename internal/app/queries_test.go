package app_test

import (
	"context"
	"testing"
	"time"

	"innkeep/internal/app"
	"innkeep/internal/domain"
)

func TestListRooms_CacheMissThenHit(t *testing.T) {
	f := newFakeStore()
	ctx := context.Background()
	hid, _ := f.CreateHotel(ctx, domain.Hotel{Name: "Hotel Central"})
	_, _ = f.CreateRoom(ctx, domain.Room{Number: "101", HotelID: hid, RoomType: "Standard", PricePerNight: 4500})

	cache := &fakeCache{}
	q := app.NewQueryService(f, cache, 5*time.Minute)

	out, err := q.ListRooms(ctx, nil, domain.Today())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out.TotalRooms != 1 || out.AvailableCount != 1 || len(out.Hotels) != 1 {
		t.Fatalf("unexpected listing: %+v", out)
	}

	// add a room behind the cache's back; listing stays cached
	_, _ = f.CreateRoom(ctx, domain.Room{Number: "202", HotelID: hid, RoomType: "Deluxe", PricePerNight: 7200})
	out2, err := q.ListRooms(ctx, nil, domain.Today())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out2.TotalRooms != 1 {
		t.Fatalf("expected cached listing of 1 room, got %d", out2.TotalRooms)
	}
}

func TestListRooms_OccupancyIsLive(t *testing.T) {
	f := newFakeStore()
	ctx := context.Background()
	hid, _ := f.CreateHotel(ctx, domain.Hotel{Name: "Hotel Central"})
	rid, _ := f.CreateRoom(ctx, domain.Room{Number: "101", HotelID: hid, RoomType: "Standard", PricePerNight: 4500})

	cache := &fakeCache{}
	q := app.NewQueryService(f, cache, 5*time.Minute)
	asOf, _ := domain.ParseDate("2025-06-10")

	out, _ := q.ListRooms(ctx, nil, asOf)
	if out.AvailableCount != 1 {
		t.Fatalf("expected free room, got %+v", out)
	}

	// book it; the cached room rows persist but availability reflects it
	if _, err := f.Reserve(ctx, domain.Booking{
		UserID: 1, RoomID: rid,
		CheckIn: mustDate(t, "2025-06-08"), CheckOut: mustDate(t, "2025-06-12"),
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	out2, _ := q.ListRooms(ctx, nil, asOf)
	if out2.AvailableCount != 0 || len(out2.ActiveRoomIDs) != 1 || out2.ActiveRoomIDs[0] != rid {
		t.Fatalf("occupancy not live: %+v", out2)
	}
}

func TestGetRoom_Detail(t *testing.T) {
	f := newFakeStore()
	ctx := context.Background()
	hid, _ := f.CreateHotel(ctx, domain.Hotel{Name: "Hotel Central"})
	rid, _ := f.CreateRoom(ctx, domain.Room{Number: "101", HotelID: hid, RoomType: "Standard", PricePerNight: 4500})

	q := app.NewQueryService(f, &fakeCache{}, 5*time.Minute)

	det, err := q.GetRoom(ctx, rid, domain.Today())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if det.Room.Number != "101" || det.Hotel.Name != "Hotel Central" || det.CurrentlyBooked {
		t.Fatalf("unexpected detail: %+v", det)
	}
}

func TestAdmin_WritesInvalidateCache(t *testing.T) {
	f := newFakeStore()
	ctx := context.Background()
	cache := &fakeCache{}
	q := app.NewQueryService(f, cache, 5*time.Minute)
	adminSvc := app.NewAdminService(f, cache)
	admin := &app.Identity{UserID: 1, Admin: true}

	h, err := adminSvc.CreateHotel(ctx, admin, "Hotel Central", "Moscow")
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}

	// prime the caches
	if _, err := q.ListRooms(ctx, nil, domain.Today()); err != nil {
		t.Fatalf("prime: %v", err)
	}

	if _, err := adminSvc.CreateRoom(ctx, admin, app.RoomInput{
		Number: "101", RoomType: "Standard", PricePerNight: 4500, HotelID: h.ID,
	}); err != nil {
		t.Fatalf("create room: %v", err)
	}

	// the new room is visible immediately, not after TTL expiry
	out, err := q.ListRooms(ctx, nil, domain.Today())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.TotalRooms != 1 {
		t.Fatalf("stale listing after admin write: %+v", out)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}
