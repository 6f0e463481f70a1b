package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Schema changes are explicit, idempotent, versioned steps applied by
// cmd/migrate at deploy time. The server only verifies the version.

type migration struct {
	version int
	stmts   map[Dialect][]string
}

var migrations = []migration{
	{
		version: 1,
		stmts: map[Dialect][]string{
			DialectSQLite: {
				`CREATE TABLE users (
					id            INTEGER PRIMARY KEY AUTOINCREMENT,
					email         TEXT NOT NULL UNIQUE,
					name          TEXT NOT NULL,
					password_hash TEXT NOT NULL,
					is_admin      INTEGER NOT NULL DEFAULT 0,
					created_at    TEXT NOT NULL
				)`,
				`CREATE TABLE hotels (
					id   INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					city TEXT
				)`,
				`CREATE TABLE rooms (
					id              INTEGER PRIMARY KEY AUTOINCREMENT,
					number          TEXT NOT NULL UNIQUE,
					hotel_id        INTEGER NOT NULL REFERENCES hotels(id),
					room_type       TEXT NOT NULL,
					description     TEXT,
					price_per_night REAL NOT NULL,
					capacity        INTEGER NOT NULL DEFAULT 1,
					created_at      TEXT NOT NULL
				)`,
				`CREATE TABLE bookings (
					id          INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id     INTEGER NOT NULL REFERENCES users(id),
					room_id     INTEGER NOT NULL REFERENCES rooms(id),
					check_in    TEXT NOT NULL,
					check_out   TEXT NOT NULL,
					total_price REAL NOT NULL,
					created_at  TEXT NOT NULL,
					CHECK (check_in < check_out)
				)`,
				`CREATE INDEX idx_bookings_room_dates ON bookings (room_id, check_in, check_out)`,
			},
			DialectMySQL: {
				`CREATE TABLE users (
					id            BIGINT PRIMARY KEY AUTO_INCREMENT,
					email         VARCHAR(120) NOT NULL UNIQUE,
					name          VARCHAR(120) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					is_admin      TINYINT(1) NOT NULL DEFAULT 0,
					created_at    CHAR(19) NOT NULL
				)`,
				`CREATE TABLE hotels (
					id   BIGINT PRIMARY KEY AUTO_INCREMENT,
					name VARCHAR(120) NOT NULL UNIQUE,
					city VARCHAR(120)
				)`,
				`CREATE TABLE rooms (
					id              BIGINT PRIMARY KEY AUTO_INCREMENT,
					number          VARCHAR(20) NOT NULL UNIQUE,
					hotel_id        BIGINT NOT NULL,
					room_type       VARCHAR(50) NOT NULL,
					description     TEXT,
					price_per_night DOUBLE NOT NULL,
					capacity        INT NOT NULL DEFAULT 1,
					created_at      CHAR(19) NOT NULL,
					FOREIGN KEY (hotel_id) REFERENCES hotels(id)
				)`,
				`CREATE TABLE bookings (
					id          BIGINT PRIMARY KEY AUTO_INCREMENT,
					user_id     BIGINT NOT NULL,
					room_id     BIGINT NOT NULL,
					check_in    CHAR(10) NOT NULL,
					check_out   CHAR(10) NOT NULL,
					total_price DOUBLE NOT NULL,
					created_at  CHAR(19) NOT NULL,
					FOREIGN KEY (user_id) REFERENCES users(id),
					FOREIGN KEY (room_id) REFERENCES rooms(id),
					CHECK (check_in < check_out)
				)`,
				`CREATE INDEX idx_bookings_room_dates ON bookings (room_id, check_in, check_out)`,
			},
		},
	},
}

// LatestSchemaVersion is what a fully migrated database reports.
func LatestSchemaVersion() int { return migrations[len(migrations)-1].version }

func (s *Store) ensureVersionTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INT PRIMARY KEY, applied_at CHAR(19) NOT NULL)`)
	return err
}

// SchemaVersion returns the highest applied migration version, 0 for a
// fresh database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	if err := s.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	var v sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

// Migrate applies pending migrations in order. Safe to re-run.
func (s *Store) Migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		stmts, ok := m.stmts[s.dialect]
		if !ok {
			return fmt.Errorf("migration %d has no statements for dialect %s", m.version, s.dialect)
		}
		for _, stmt := range stmts {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d: %w", m.version, err)
			}
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, m.version, nowString()); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		log.Info().Int("version", m.version).Msg("migration applied")
	}
	return nil
}

// Seed inserts the sample data set when the hotels table is empty.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotels`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertHotel := func(name, city string) (int64, error) {
		res, err := tx.ExecContext(ctx, insertHotelSQL, name, city)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	central, err := insertHotel("Hotel Central", "Moscow")
	if err != nil {
		return err
	}
	city, err := insertHotel("City Hotel", "Saint Petersburg")
	if err != nil {
		return err
	}

	now := nowString()
	sample := []struct {
		number   string
		hotelID  int64
		roomType string
		price    float64
		capacity int
		desc     string
	}{
		{"101", central, "Standard", 4500, 2, "Cozy room in the city centre."},
		{"202", central, "Deluxe", 7200, 3, "Spacious room with a city view."},
		{"301", city, "Standard", 3800, 2, "Quiet room near the embankment."},
	}
	for _, r := range sample {
		if _, err := tx.ExecContext(ctx, insertRoomSQL,
			r.number, r.hotelID, r.roomType, r.desc, r.price, r.capacity, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info().Msg("sample data seeded")
	return nil
}
