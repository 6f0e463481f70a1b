package sqlstore

// Dates are stored as ISO YYYY-MM-DD text in both dialects; string
// comparison on that form matches date comparison, so the overlap and
// occupancy predicates work unchanged on SQLite and MySQL.

const insertUserSQL = `
INSERT INTO users (email, name, password_hash, is_admin, created_at)
VALUES (?, ?, ?, ?, ?)
`

const userByIDSQL = `
SELECT id, email, name, password_hash, is_admin, created_at
FROM users WHERE id = ?
`

const userByEmailSQL = `
SELECT id, email, name, password_hash, is_admin, created_at
FROM users WHERE email = ?
`

const listUsersSQL = `
SELECT id, email, name, password_hash, is_admin, created_at
FROM users
ORDER BY created_at DESC, id DESC
`

const userEmailExistsSQL = `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

const insertHotelSQL = `INSERT INTO hotels (name, city) VALUES (?, ?)`

const updateHotelSQL = `UPDATE hotels SET name = ?, city = ? WHERE id = ?`

const hotelByIDSQL = `SELECT id, name, city FROM hotels WHERE id = ?`

const listHotelsSQL = `SELECT id, name, city FROM hotels ORDER BY name`

const hotelExistsSQL = `SELECT EXISTS(SELECT 1 FROM hotels WHERE id = ?)`

// The duplicate scans exclude a record id so edits don't collide with
// themselves; create passes 0, which never matches a real row.
const hotelNameTakenSQL = `SELECT EXISTS(SELECT 1 FROM hotels WHERE name = ? AND id <> ?)`

const insertRoomSQL = `
INSERT INTO rooms (number, hotel_id, room_type, description, price_per_night, capacity, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms
SET number = ?, hotel_id = ?, room_type = ?, description = ?, price_per_night = ?, capacity = ?
WHERE id = ?
`

const roomByIDSQL = `
SELECT id, number, hotel_id, room_type, description, price_per_night, capacity, created_at
FROM rooms WHERE id = ?
`

const listRoomsSQL = `
SELECT id, number, hotel_id, room_type, description, price_per_night, capacity, created_at
FROM rooms
`

const roomExistsSQL = `SELECT EXISTS(SELECT 1 FROM rooms WHERE id = ?)`

const roomNumberTakenSQL = `SELECT EXISTS(SELECT 1 FROM rooms WHERE number = ? AND id <> ?)`

// Half-open [check_in, check_out) overlap test: an existing booking
// conflicts iff existing.check_in < new.check_out AND
// existing.check_out > new.check_in.
const overlapExistsSQL = `
SELECT EXISTS(
  SELECT 1 FROM bookings
  WHERE room_id = ? AND check_in < ? AND check_out > ?
)
`

const insertBookingSQL = `
INSERT INTO bookings (user_id, room_id, check_in, check_out, total_price, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const deleteOwnedBookingSQL = `DELETE FROM bookings WHERE id = ? AND user_id = ?`

const listBookingsByUserSQL = `
SELECT b.id, b.user_id, b.room_id, b.check_in, b.check_out, b.total_price, b.created_at,
       r.number, h.name, u.email, u.name
FROM bookings b
JOIN rooms r ON r.id = b.room_id
JOIN hotels h ON h.id = r.hotel_id
JOIN users u ON u.id = b.user_id
WHERE b.user_id = ?
ORDER BY b.check_in DESC, b.id DESC
`

const listBookingsSQL = `
SELECT b.id, b.user_id, b.room_id, b.check_in, b.check_out, b.total_price, b.created_at,
       r.number, h.name, u.email, u.name
FROM bookings b
JOIN rooms r ON r.id = b.room_id
JOIN hotels h ON h.id = r.hotel_id
JOIN users u ON u.id = b.user_id
ORDER BY b.check_in DESC, b.id DESC
`

// Active at a reference date means check_in <= asOf < check_out.
const activeRoomIDsSQL = `
SELECT DISTINCT room_id FROM bookings
WHERE check_in <= ? AND check_out > ?
`

const roomOccupiedSQL = `
SELECT EXISTS(
  SELECT 1 FROM bookings
  WHERE room_id = ? AND check_in <= ? AND check_out > ?
)
`
