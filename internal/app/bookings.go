package app

import (
	"context"
	"time"

	"innkeep/internal/domain"
)

// BookingService is the availability/booking engine: it admits or
// rejects reservation requests and computes occupancy.
type BookingService struct {
	store domain.Store
}

func NewBookingService(store domain.Store) *BookingService {
	return &BookingService{store: store}
}

// CreateBooking validates a reservation request and persists it. The
// checks short-circuit in a fixed order so each failure maps to its own
// user-facing rejection: date format, then range, then overlap. The
// overlap check runs inside the store's Reserve transaction together
// with the insert, so two concurrent overlapping requests for the same
// room cannot both be admitted.
func (s *BookingService) CreateBooking(ctx context.Context, caller *Identity, roomID int64, checkInStr, checkOutStr string) (domain.Booking, error) {
	if err := Require(caller, LevelAuthenticated); err != nil {
		return domain.Booking{}, err
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Booking{}, err
	}

	checkIn, err := domain.ParseDate(checkInStr)
	if err != nil {
		return domain.Booking{}, err
	}
	checkOut, err := domain.ParseDate(checkOutStr)
	if err != nil {
		return domain.Booking{}, err
	}

	if !checkIn.Before(checkOut) {
		return domain.Booking{}, domain.ErrInvalidDateRange
	}

	nights := domain.Nights(checkIn, checkOut)
	b := domain.Booking{
		UserID:     caller.UserID,
		RoomID:     room.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: float64(nights) * room.PricePerNight,
	}

	id, err := s.store.Reserve(ctx, b)
	if err != nil {
		return domain.Booking{}, err
	}
	b.ID = id
	return b, nil
}

// CancelBooking deletes the caller's booking. A booking that does not
// exist and a booking owned by someone else report the same ErrNotFound
// so cancellation cannot be used to probe for other users' bookings.
func (s *BookingService) CancelBooking(ctx context.Context, caller *Identity, bookingID int64) error {
	if err := Require(caller, LevelAuthenticated); err != nil {
		return err
	}
	ok, err := s.store.DeleteOwned(ctx, bookingID, caller.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *BookingService) MyBookings(ctx context.Context, caller *Identity) ([]domain.BookingView, error) {
	if err := Require(caller, LevelAuthenticated); err != nil {
		return nil, err
	}
	return s.store.ListBookingsByUser(ctx, caller.UserID)
}

// RoomOccupied reports whether the room has a booking active at asOf
// (check_in <= asOf < check_out).
func (s *BookingService) RoomOccupied(ctx context.Context, roomID int64, asOf time.Time) (bool, error) {
	return s.store.RoomOccupied(ctx, roomID, asOf)
}

// AvailableCount counts rooms in the given set with no booking active
// at asOf. The active set comes from one batch query, not a query per
// room.
func (s *BookingService) AvailableCount(ctx context.Context, rooms []domain.Room, asOf time.Time) (int, error) {
	active, err := s.store.ActiveRoomIDs(ctx, asOf)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range rooms {
		if _, busy := active[r.ID]; !busy {
			n++
		}
	}
	return n, nil
}
