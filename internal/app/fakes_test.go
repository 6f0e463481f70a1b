package app_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"innkeep/internal/domain"
)

// ---- fakes ----

// fakeStore is an in-memory domain.Store mirroring the SQL store's
// semantics: duplicate checks, the Reserve overlap re-check, and the
// owner-conflating DeleteOwned.
type fakeStore struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	hotels   map[int64]domain.Hotel
	rooms    map[int64]domain.Room
	bookings map[int64]domain.Booking
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]domain.User{},
		hotels:   map[int64]domain.Hotel{},
		rooms:    map[int64]domain.Room{},
		bookings: map[int64]domain.Booking{},
	}
}

func (f *fakeStore) id() int64 { f.nextID++; return f.nextID }

func (f *fakeStore) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.Email == u.Email {
			return 0, domain.ErrDuplicateEmail
		}
	}
	u.ID = f.id()
	u.CreatedAt = time.Now().UTC()
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) CreateHotel(ctx context.Context, h domain.Hotel) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.hotels {
		if strings.EqualFold(e.Name, h.Name) {
			return 0, domain.ErrDuplicateHotelName
		}
	}
	h.ID = f.id()
	f.hotels[h.ID] = h
	return h.ID, nil
}

func (f *fakeStore) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, e := range f.hotels {
		if e.ID != h.ID && strings.EqualFold(e.Name, h.Name) {
			return domain.ErrDuplicateHotelName
		}
	}
	f.hotels[h.ID] = h
	return nil
}

func (f *fakeStore) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeStore) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Hotel, 0, len(f.hotels))
	for _, h := range f.hotels {
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeStore) CreateRoom(ctx context.Context, r domain.Room) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.rooms {
		if e.Number == r.Number {
			return 0, domain.ErrDuplicateRoomNum
		}
	}
	r.ID = f.id()
	f.rooms[r.ID] = r
	return r.ID, nil
}

func (f *fakeStore) UpdateRoom(ctx context.Context, r domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[r.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, e := range f.rooms {
		if e.ID != r.ID && e.Number == r.Number {
			return domain.ErrDuplicateRoomNum
		}
	}
	f.rooms[r.ID] = r
	return nil
}

func (f *fakeStore) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListRooms(ctx context.Context, q domain.RoomsQuery) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		if q.HotelID != nil && r.HotelID != *q.HotelID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Reserve(ctx context.Context, b domain.Booking) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[b.RoomID]; !ok {
		return 0, domain.ErrNotFound
	}
	for _, e := range f.bookings {
		if e.RoomID == b.RoomID && domain.Overlaps(b.CheckIn, b.CheckOut, e.CheckIn, e.CheckOut) {
			return 0, domain.ErrDateRangeConflict
		}
	}
	b.ID = f.id()
	b.CreatedAt = time.Now().UTC()
	f.bookings[b.ID] = b
	return b.ID, nil
}

func (f *fakeStore) DeleteOwned(ctx context.Context, bookingID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok || b.UserID != userID {
		return false, nil
	}
	delete(f.bookings, bookingID)
	return true, nil
}

func (f *fakeStore) ListBookingsByUser(ctx context.Context, userID int64) ([]domain.BookingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.BookingView
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, f.view(b))
		}
	}
	return out, nil
}

func (f *fakeStore) ListBookings(ctx context.Context) ([]domain.BookingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.BookingView
	for _, b := range f.bookings {
		out = append(out, f.view(b))
	}
	return out, nil
}

func (f *fakeStore) view(b domain.Booking) domain.BookingView {
	v := domain.BookingView{Booking: b}
	if r, ok := f.rooms[b.RoomID]; ok {
		v.RoomNumber = r.Number
		if h, ok := f.hotels[r.HotelID]; ok {
			v.HotelName = h.Name
		}
	}
	if u, ok := f.users[b.UserID]; ok {
		v.UserEmail = u.Email
		v.UserName = u.Name
	}
	return v
}

func (f *fakeStore) ActiveRoomIDs(ctx context.Context, asOf time.Time) (map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]struct{}{}
	for _, b := range f.bookings {
		if !asOf.Before(b.CheckIn) && asOf.Before(b.CheckOut) {
			out[b.RoomID] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeStore) RoomOccupied(ctx context.Context, roomID int64, asOf time.Time) (bool, error) {
	active, _ := f.ActiveRoomIDs(ctx, asOf)
	_, ok := active[roomID]
	return ok, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}
