package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"innkeep/internal/domain"
)

// Reserve re-checks the overlap invariant and inserts the booking in
// one transaction. The room row is held (FOR UPDATE on MySQL, the
// single writer connection on SQLite) from the check through the
// insert, so concurrent overlapping requests for the same room
// serialize and the loser sees the winner's row.
func (s *Store) Reserve(ctx context.Context, b domain.Booking) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var roomID int64
	if err := tx.QueryRowContext(ctx, s.lockRoomSQL(), b.RoomID).Scan(&roomID); err != nil {
		if err == sql.ErrNoRows {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}

	var conflict bool
	if err := tx.QueryRowContext(ctx, overlapExistsSQL,
		b.RoomID, fmtDate(b.CheckOut), fmtDate(b.CheckIn)).Scan(&conflict); err != nil {
		return 0, err
	}
	if conflict {
		return 0, domain.ErrDateRangeConflict
	}

	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx, insertBookingSQL,
		b.UserID, b.RoomID, fmtDate(b.CheckIn), fmtDate(b.CheckOut), b.TotalPrice, fmtTime(created))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) DeleteOwned(ctx context.Context, bookingID, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, deleteOwnedBookingSQL, bookingID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID int64) ([]domain.BookingView, error) {
	rows, err := s.db.QueryContext(ctx, listBookingsByUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookingViews(rows)
}

func (s *Store) ListBookings(ctx context.Context) ([]domain.BookingView, error) {
	rows, err := s.db.QueryContext(ctx, listBookingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookingViews(rows)
}

func collectBookingViews(rows *sql.Rows) ([]domain.BookingView, error) {
	var out []domain.BookingView
	for rows.Next() {
		var bv domain.BookingView
		var checkIn, checkOut, createdAt string
		if err := rows.Scan(
			&bv.ID, &bv.UserID, &bv.RoomID, &checkIn, &checkOut, &bv.TotalPrice, &createdAt,
			&bv.RoomNumber, &bv.HotelName, &bv.UserEmail, &bv.UserName,
		); err != nil {
			return nil, err
		}
		bv.CheckIn = parseDate(checkIn)
		bv.CheckOut = parseDate(checkOut)
		bv.CreatedAt = parseTime(createdAt)
		out = append(out, bv)
	}
	return out, rows.Err()
}

func (s *Store) ActiveRoomIDs(ctx context.Context, asOf time.Time) (map[int64]struct{}, error) {
	day := fmtDate(asOf)
	rows, err := s.db.QueryContext(ctx, activeRoomIDsSQL, day, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	active := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		active[id] = struct{}{}
	}
	return active, rows.Err()
}

func (s *Store) RoomOccupied(ctx context.Context, roomID int64, asOf time.Time) (bool, error) {
	day := fmtDate(asOf)
	var occupied bool
	err := s.db.QueryRowContext(ctx, roomOccupiedSQL, roomID, day, day).Scan(&occupied)
	return occupied, err
}

// isDuplicate recognizes unique-index violations from either driver.
func isDuplicate(err error) bool {
	if me, ok := err.(*mysql.MySQLError); ok {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
