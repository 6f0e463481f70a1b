package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"innkeep/internal/domain"
)

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	var taken bool
	if err := s.db.QueryRowContext(ctx, userEmailExistsSQL, u.Email).Scan(&taken); err != nil {
		return 0, err
	}
	if taken {
		return 0, domain.ErrDuplicateEmail
	}
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, insertUserSQL, u.Email, u.Name, u.PasswordHash, u.IsAdmin, fmtTime(created))
	if err != nil {
		// unique index backstop for a concurrent duplicate registration
		if isDuplicate(err) {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, userByIDSQL, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, userByEmailSQL, email))
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, listUsersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// ---- hotels ----

func (s *Store) CreateHotel(ctx context.Context, h domain.Hotel) (int64, error) {
	if err := s.checkHotelName(ctx, h.Name, 0); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, insertHotelSQL, h.Name, valStr(h.City))
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ErrDuplicateHotelName
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	if err := s.checkHotelName(ctx, h.Name, h.ID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, updateHotelSQL, h.Name, valStr(h.City), h.ID)
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicateHotelName
		}
		return err
	}
	// RowsAffected is 0 both for a missing row and for a no-op update,
	// so confirm existence before reporting not found.
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, hotelExistsSQL, h.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (s *Store) checkHotelName(ctx context.Context, name string, excludeID int64) error {
	var taken bool
	if err := s.db.QueryRowContext(ctx, hotelNameTakenSQL, name, excludeID).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateHotelName
	}
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	return scanHotel(s.db.QueryRowContext(ctx, hotelByIDSQL, id))
}

func (s *Store) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := s.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanHotel(row rowScanner) (domain.Hotel, error) {
	var h domain.Hotel
	var city sql.NullString
	if err := row.Scan(&h.ID, &h.Name, &city); err != nil {
		if err == sql.ErrNoRows {
			return domain.Hotel{}, domain.ErrNotFound
		}
		return domain.Hotel{}, err
	}
	if city.Valid {
		c := city.String
		h.City = &c
	}
	return h, nil
}

// ---- rooms ----

func (s *Store) CreateRoom(ctx context.Context, r domain.Room) (int64, error) {
	if err := s.checkRoomNumber(ctx, r.Number, 0); err != nil {
		return 0, err
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, insertRoomSQL,
		r.Number, r.HotelID, r.RoomType, valStr(r.Description), r.PricePerNight, r.Capacity, fmtTime(created))
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ErrDuplicateRoomNum
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) UpdateRoom(ctx context.Context, r domain.Room) error {
	if err := s.checkRoomNumber(ctx, r.Number, r.ID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, updateRoomSQL,
		r.Number, r.HotelID, r.RoomType, valStr(r.Description), r.PricePerNight, r.Capacity, r.ID)
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicateRoomNum
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, roomExistsSQL, r.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (s *Store) checkRoomNumber(ctx context.Context, number string, excludeID int64) error {
	var taken bool
	if err := s.db.QueryRowContext(ctx, roomNumberTakenSQL, number, excludeID).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateRoomNum
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	return scanRoom(s.db.QueryRowContext(ctx, roomByIDSQL, id))
}

func (s *Store) ListRooms(ctx context.Context, q domain.RoomsQuery) ([]domain.Room, error) {
	query := listRoomsSQL
	var args []any
	if q.HotelID != nil {
		query += ` WHERE hotel_id = ?`
		args = append(args, *q.HotelID)
	}
	if q.OrderByNumber {
		query += ` ORDER BY number`
	} else {
		query += ` ORDER BY price_per_night, id`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRoom(row rowScanner) (domain.Room, error) {
	var r domain.Room
	var desc sql.NullString
	var createdAt string
	if err := row.Scan(&r.ID, &r.Number, &r.HotelID, &r.RoomType, &desc, &r.PricePerNight, &r.Capacity, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}
	if desc.Valid {
		d := desc.String
		r.Description = &d
	}
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}
