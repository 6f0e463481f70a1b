package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// Store implements domain.Store on database/sql. The default backend is
// the embedded single-file SQLite store; MySQL is selected by driver.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store { return &Store{db: db, dialect: dialect} }

// Open connects and pings. SQLite runs with a single connection so
// write transactions serialize instead of failing with SQLITE_BUSY.
func Open(driver, dsn string) (*Store, error) {
	d := Dialect(driver)
	switch d {
	case DialectSQLite, DialectMySQL:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, err
	}
	if d == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return New(db, d), nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// lockRoomSQL pins the room row for the overlap-check-then-insert in
// Reserve. MySQL takes a row lock; SQLite relies on the single-writer
// connection, so a plain lookup is enough there.
func (s *Store) lockRoomSQL() string {
	if s.dialect == DialectMySQL {
		return `SELECT id FROM rooms WHERE id = ? FOR UPDATE`
	}
	return `SELECT id FROM rooms WHERE id = ?`
}

const dateLayout = "2006-01-02"
const timeLayout = "2006-01-02 15:04:05"

func fmtDate(t time.Time) string { return t.UTC().Format(dateLayout) }

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func nowString() string { return fmtTime(time.Now()) }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
