package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"innkeep/internal/domain"
)

// AdminService covers the administrator surface: hotel and room
// create/edit plus the admin listings. There are no delete operations.
// Writes invalidate the read-side cache entries they affect.
type AdminService struct {
	store domain.Store
	cache domain.Cache
}

func NewAdminService(store domain.Store, cache domain.Cache) *AdminService {
	return &AdminService{store: store, cache: cache}
}

type RoomInput struct {
	Number        string
	RoomType      string
	Description   string
	PricePerNight float64
	Capacity      int
	HotelID       int64
}

type HotelWithRooms struct {
	domain.Hotel
	Rooms []domain.Room
}

func (s *AdminService) CreateHotel(ctx context.Context, caller *Identity, name, city string) (domain.Hotel, error) {
	if err := Require(caller, LevelAdmin); err != nil {
		return domain.Hotel{}, err
	}
	h, err := buildHotel(name, city)
	if err != nil {
		return domain.Hotel{}, err
	}
	id, err := s.store.CreateHotel(ctx, h)
	if err != nil {
		return domain.Hotel{}, err
	}
	h.ID = id
	s.invalidateHotels(ctx)
	return h, nil
}

func (s *AdminService) UpdateHotel(ctx context.Context, caller *Identity, id int64, name, city string) error {
	if err := Require(caller, LevelAdmin); err != nil {
		return err
	}
	h, err := buildHotel(name, city)
	if err != nil {
		return err
	}
	h.ID = id
	if err := s.store.UpdateHotel(ctx, h); err != nil {
		return err
	}
	s.invalidateHotels(ctx)
	return nil
}

func (s *AdminService) CreateRoom(ctx context.Context, caller *Identity, in RoomInput) (domain.Room, error) {
	if err := Require(caller, LevelAdmin); err != nil {
		return domain.Room{}, err
	}
	r, err := s.buildRoom(ctx, in)
	if err != nil {
		return domain.Room{}, err
	}
	id, err := s.store.CreateRoom(ctx, r)
	if err != nil {
		return domain.Room{}, err
	}
	r.ID = id
	s.invalidateRooms(ctx, r.ID, r.HotelID)
	return r, nil
}

func (s *AdminService) UpdateRoom(ctx context.Context, caller *Identity, id int64, in RoomInput) error {
	if err := Require(caller, LevelAdmin); err != nil {
		return err
	}
	prev, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	r, err := s.buildRoom(ctx, in)
	if err != nil {
		return err
	}
	r.ID = id
	if err := s.store.UpdateRoom(ctx, r); err != nil {
		return err
	}
	s.invalidateRooms(ctx, id, r.HotelID)
	if prev.HotelID != r.HotelID {
		s.invalidateRooms(ctx, id, prev.HotelID)
	}
	return nil
}

func (s *AdminService) GetHotel(ctx context.Context, caller *Identity, id int64) (domain.Hotel, error) {
	if err := Require(caller, LevelAdmin); err != nil {
		return domain.Hotel{}, err
	}
	return s.store.GetHotel(ctx, id)
}

func (s *AdminService) GetRoom(ctx context.Context, caller *Identity, id int64) (domain.Room, error) {
	if err := Require(caller, LevelAdmin); err != nil {
		return domain.Room{}, err
	}
	return s.store.GetRoom(ctx, id)
}

// ListRooms returns all rooms ordered by number for the admin screen.
func (s *AdminService) ListRooms(ctx context.Context, caller *Identity) ([]domain.Room, error) {
	if err := Require(caller, LevelAdmin); err != nil {
		return nil, err
	}
	return s.store.ListRooms(ctx, domain.RoomsQuery{OrderByNumber: true})
}

// ListHotels returns hotels with their rooms attached, assembled from
// two queries rather than a lookup per hotel.
func (s *AdminService) ListHotels(ctx context.Context, caller *Identity) ([]HotelWithRooms, error) {
	if err := Require(caller, LevelAdmin); err != nil {
		return nil, err
	}
	hotels, err := s.store.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.store.ListRooms(ctx, domain.RoomsQuery{OrderByNumber: true})
	if err != nil {
		return nil, err
	}
	byHotel := make(map[int64][]domain.Room, len(hotels))
	for _, r := range rooms {
		byHotel[r.HotelID] = append(byHotel[r.HotelID], r)
	}
	out := make([]HotelWithRooms, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, HotelWithRooms{Hotel: h, Rooms: byHotel[h.ID]})
	}
	return out, nil
}

func (s *AdminService) ListBookings(ctx context.Context, caller *Identity) ([]domain.BookingView, error) {
	if err := Require(caller, LevelAdmin); err != nil {
		return nil, err
	}
	return s.store.ListBookings(ctx)
}

func (s *AdminService) ListUsers(ctx context.Context, caller *Identity) ([]domain.User, error) {
	if err := Require(caller, LevelAdmin); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

func buildHotel(name, city string) (domain.Hotel, error) {
	name = strings.TrimSpace(name)
	city = strings.TrimSpace(city)

	ve := domain.NewValidationError()
	if name == "" {
		ve.Add("name", "required")
	}
	if !ve.Empty() {
		return domain.Hotel{}, ve
	}
	h := domain.Hotel{Name: name}
	if city != "" {
		h.City = &city
	}
	return h, nil
}

func (s *AdminService) buildRoom(ctx context.Context, in RoomInput) (domain.Room, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.RoomType = strings.TrimSpace(in.RoomType)
	in.Description = strings.TrimSpace(in.Description)

	ve := domain.NewValidationError()
	if in.Number == "" {
		ve.Add("number", "required")
	}
	if in.RoomType == "" {
		ve.Add("room_type", "required")
	}
	if in.PricePerNight <= 0 {
		ve.Add("price_per_night", "must be positive")
	}
	if in.Capacity <= 0 {
		in.Capacity = 1
	}
	if in.HotelID == 0 {
		ve.Add("hotel_id", "required")
	} else if _, err := s.store.GetHotel(ctx, in.HotelID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			ve.Add("hotel_id", "no such hotel")
		} else {
			return domain.Room{}, err
		}
	}
	if !ve.Empty() {
		return domain.Room{}, ve
	}

	r := domain.Room{
		Number:        in.Number,
		HotelID:       in.HotelID,
		RoomType:      in.RoomType,
		PricePerNight: in.PricePerNight,
		Capacity:      in.Capacity,
		CreatedAt:     time.Now().UTC(),
	}
	if in.Description != "" {
		r.Description = &in.Description
	}
	return r, nil
}

func (s *AdminService) invalidateHotels(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, hotelsKey())
}

func (s *AdminService) invalidateRooms(ctx context.Context, roomID, hotelID int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, roomKey(roomID))
	_ = s.cache.Del(ctx, roomsKey(nil))
	_ = s.cache.Del(ctx, roomsKey(&hotelID))
}
