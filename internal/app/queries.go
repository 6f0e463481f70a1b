package app

import (
	"context"
	"fmt"
	"time"

	"innkeep/internal/domain"
)

// QueryService serves the public read side: the room listing with its
// availability count and the room detail page. Hotel and room rows are
// cached; occupancy is always computed live against the store.
type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(store domain.Store, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: cache, cacheTTL: ttl}
}

type RoomListing struct {
	Rooms          []domain.Room
	Hotels         []domain.Hotel
	SelectedHotel  *int64
	TotalRooms     int
	AvailableCount int
	ActiveRoomIDs  []int64
}

type RoomDetail struct {
	Room            domain.Room
	Hotel           domain.Hotel
	CurrentlyBooked bool
}

func hotelsKey() string { return "hotels" }

func roomsKey(hotelID *int64) string {
	if hotelID == nil {
		return "rooms:all"
	}
	return fmt.Sprintf("rooms:hotel:%d", *hotelID)
}

func roomKey(id int64) string { return fmt.Sprintf("room:%d", id) }

// ListRooms builds the landing listing: all hotels for the filter,
// rooms ordered by nightly price (optionally filtered by hotel), and
// the count of rooms free at asOf.
func (s *QueryService) ListRooms(ctx context.Context, hotelID *int64, asOf time.Time) (RoomListing, error) {
	hotels, err := s.listHotelsCached(ctx)
	if err != nil {
		return RoomListing{}, err
	}

	var rooms []domain.Room
	if ok, _ := s.cache.Get(ctx, roomsKey(hotelID), &rooms); !ok {
		rooms, err = s.store.ListRooms(ctx, domain.RoomsQuery{HotelID: hotelID})
		if err != nil {
			return RoomListing{}, err
		}
		_ = s.cache.Set(ctx, roomsKey(hotelID), rooms, int(s.cacheTTL.Seconds()))
	}

	active, err := s.store.ActiveRoomIDs(ctx, asOf)
	if err != nil {
		return RoomListing{}, err
	}

	out := RoomListing{
		Rooms:         rooms,
		Hotels:        hotels,
		SelectedHotel: hotelID,
		TotalRooms:    len(rooms),
	}
	for _, r := range rooms {
		if _, busy := active[r.ID]; busy {
			out.ActiveRoomIDs = append(out.ActiveRoomIDs, r.ID)
		} else {
			out.AvailableCount++
		}
	}
	return out, nil
}

// GetRoom returns the room detail with its hotel and live occupancy.
func (s *QueryService) GetRoom(ctx context.Context, id int64, asOf time.Time) (RoomDetail, error) {
	var room domain.Room
	if ok, _ := s.cache.Get(ctx, roomKey(id), &room); !ok {
		var err error
		room, err = s.store.GetRoom(ctx, id)
		if err != nil {
			return RoomDetail{}, err
		}
		_ = s.cache.Set(ctx, roomKey(id), room, int(s.cacheTTL.Seconds()))
	}

	hotel, err := s.store.GetHotel(ctx, room.HotelID)
	if err != nil {
		return RoomDetail{}, err
	}

	booked, err := s.store.RoomOccupied(ctx, id, asOf)
	if err != nil {
		return RoomDetail{}, err
	}
	return RoomDetail{Room: room, Hotel: hotel, CurrentlyBooked: booked}, nil
}

func (s *QueryService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	return s.listHotelsCached(ctx)
}

func (s *QueryService) listHotelsCached(ctx context.Context) ([]domain.Hotel, error) {
	var hotels []domain.Hotel
	if ok, _ := s.cache.Get(ctx, hotelsKey(), &hotels); ok {
		return hotels, nil
	}
	hotels, err := s.store.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, hotelsKey(), hotels, int(s.cacheTTL.Seconds()))
	return hotels, nil
}

// Warm prefetches the hotel list and per-hotel room listings into the
// cache. Called once at server start.
func (s *QueryService) Warm(ctx context.Context, hotelID *int64) error {
	if hotelID == nil {
		_, err := s.listHotelsCached(ctx)
		return err
	}
	rooms, err := s.store.ListRooms(ctx, domain.RoomsQuery{HotelID: hotelID})
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, roomsKey(hotelID), rooms, int(s.cacheTTL.Seconds()))
}
