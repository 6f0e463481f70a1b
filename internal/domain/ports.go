package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u User) (int64, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type HotelRepository interface {
	CreateHotel(ctx context.Context, h Hotel) (int64, error)
	UpdateHotel(ctx context.Context, h Hotel) error
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, r Room) (int64, error)
	UpdateRoom(ctx context.Context, r Room) error
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context, q RoomsQuery) ([]Room, error)
}

type BookingRepository interface {
	// Reserve inserts the booking after re-checking the overlap invariant
	// inside a single transaction that holds the room row for the duration
	// of the check-then-insert. Returns ErrDateRangeConflict when the
	// interval intersects an existing booking for the same room.
	Reserve(ctx context.Context, b Booking) (int64, error)

	// DeleteOwned removes a booking only when it belongs to userID.
	// The false return conflates "no such booking" and "not the owner".
	DeleteOwned(ctx context.Context, bookingID, userID int64) (bool, error)

	ListBookingsByUser(ctx context.Context, userID int64) ([]BookingView, error)
	ListBookings(ctx context.Context) ([]BookingView, error)

	// ActiveRoomIDs returns the distinct rooms with a booking active at
	// asOf (check_in <= asOf < check_out) in one query.
	ActiveRoomIDs(ctx context.Context, asOf time.Time) (map[int64]struct{}, error)
	RoomOccupied(ctx context.Context, roomID int64, asOf time.Time) (bool, error)
}

// Store is the full persistence surface the services are wired with.
type Store interface {
	UserRepository
	HotelRepository
	RoomRepository
	BookingRepository
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries

type RoomsQuery struct {
	HotelID       *int64
	OrderByNumber bool // admin listing; default order is price ascending
}

// BookingView joins the referenced room, hotel and user eagerly so
// listings never traverse relations per row.
type BookingView struct {
	Booking
	RoomNumber string
	HotelName  string
	UserEmail  string
	UserName   string
}
