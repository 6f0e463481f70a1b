package domain

import "time"

type Hotel struct {
	ID   int64
	Name string
	City *string
}

type Room struct {
	ID            int64
	Number        string
	HotelID       int64
	RoomType      string
	Description   *string
	PricePerNight float64
	Capacity      int
	CreatedAt     time.Time
}

type User struct {
	ID           int64
	Email        string // stored lowercase
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Booking holds a half-open stay interval [CheckIn, CheckOut).
// Immutable once created; cancellation deletes the row.
type Booking struct {
	ID         int64
	UserID     int64
	RoomID     int64
	CheckIn    time.Time // UTC midnight
	CheckOut   time.Time // UTC midnight
	TotalPrice float64
	CreatedAt  time.Time
}

// Nights returns the stay length in whole days.
func (b Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}
