//go:build integration || !unit

package sqlstore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"innkeep/internal/domain"
	"innkeep/internal/storage/sqlstore"
)

// Spins up an isolated MySQL container and runs the same storage
// contract the SQLite tests cover, plus the FOR UPDATE serialization
// path that only exists on this dialect.
func TestMySQL_StorageContract(t *testing.T) {
	if testing.Short() {
		t.Skip("container test skipped in -short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=innkeep",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/innkeep?charset=utf8mb4&loc=UTC", hostPort)

	var st *sqlstore.Store
	if err := pool.Retry(func() error {
		var e error
		st, e = sqlstore.Open("mysql", dsn)
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ver, err := st.SchemaVersion(ctx)
	if err != nil || ver != sqlstore.LatestSchemaVersion() {
		t.Fatalf("schema version %d (err=%v), want %d", ver, err, sqlstore.LatestSchemaVersion())
	}

	hotelID, err := st.CreateHotel(ctx, domain.Hotel{Name: "Hotel Central"})
	if err != nil {
		t.Fatalf("hotel: %v", err)
	}
	roomID, err := st.CreateRoom(ctx, domain.Room{
		Number: "101", HotelID: hotelID, RoomType: "Standard", PricePerNight: 4500, Capacity: 2,
	})
	if err != nil {
		t.Fatalf("room: %v", err)
	}
	uid, err := st.CreateUser(ctx, domain.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("user: %v", err)
	}

	t.Run("duplicates", func(t *testing.T) {
		if _, err := st.CreateUser(ctx, domain.User{Email: "alice@example.com", Name: "A", PasswordHash: "y"}); !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("email: %v", err)
		}
		if _, err := st.CreateHotel(ctx, domain.Hotel{Name: "Hotel Central"}); !errors.Is(err, domain.ErrDuplicateHotelName) {
			t.Fatalf("hotel name: %v", err)
		}
		if _, err := st.CreateRoom(ctx, domain.Room{Number: "101", HotelID: hotelID, RoomType: "Deluxe", PricePerNight: 1}); !errors.Is(err, domain.ErrDuplicateRoomNum) {
			t.Fatalf("room number: %v", err)
		}
	})

	t.Run("overlap", func(t *testing.T) {
		if _, err := st.Reserve(ctx, domain.Booking{
			UserID: uid, RoomID: roomID,
			CheckIn: date(t, "2025-06-01"), CheckOut: date(t, "2025-06-05"), TotalPrice: 18000,
		}); err != nil {
			t.Fatalf("first: %v", err)
		}
		if _, err := st.Reserve(ctx, domain.Booking{
			UserID: uid, RoomID: roomID,
			CheckIn: date(t, "2025-06-04"), CheckOut: date(t, "2025-06-08"), TotalPrice: 18000,
		}); !errors.Is(err, domain.ErrDateRangeConflict) {
			t.Fatalf("overlap: %v", err)
		}
		if _, err := st.Reserve(ctx, domain.Booking{
			UserID: uid, RoomID: roomID,
			CheckIn: date(t, "2025-06-05"), CheckOut: date(t, "2025-06-08"), TotalPrice: 13500,
		}); err != nil {
			t.Fatalf("adjacent: %v", err)
		}
	})

	t.Run("concurrent reserve under row lock", func(t *testing.T) {
		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = st.Reserve(ctx, domain.Booking{
					UserID: uid, RoomID: roomID,
					CheckIn: date(t, "2025-07-01"), CheckOut: date(t, "2025-07-05"), TotalPrice: 18000,
				})
			}(i)
		}
		wg.Wait()

		created := 0
		for i, err := range errs {
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrDateRangeConflict):
			default:
				t.Fatalf("request %d: %v", i, err)
			}
		}
		if created != 1 {
			t.Fatalf("%d admitted, want 1", created)
		}
	})

	t.Run("views", func(t *testing.T) {
		views, err := st.ListBookingsByUser(ctx, uid)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(views) == 0 || views[0].HotelName != "Hotel Central" || views[0].UserEmail != "alice@example.com" {
			t.Fatalf("unexpected views: %+v", views)
		}
	})
}
