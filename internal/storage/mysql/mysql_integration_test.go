//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_business/internal/domain"
	mysqlrepo "hotel_business/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotel",
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
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotel")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedGuest(t *testing.T, repo *mysqlrepo.Repo, username string, series, number int, phone string, discount float64) domain.Guest {
	t.Helper()
	ctx := context.Background()

	var g domain.Guest
	err := repo.WithinTx(ctx, func(s domain.Store) error {
		doc := domain.Document{Series: series, Number: number, IssuedOn: date(2015, 3, 1), IssuedBy: "MVD 77"}
		if err := s.CreateDocument(ctx, &doc); err != nil {
			return err
		}
		acc := domain.Account{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: "x",
			Role:         domain.RoleClient,
		}
		if err := s.CreateAccount(ctx, &acc); err != nil {
			return err
		}
		g = domain.Guest{
			AccountID:  acc.ID,
			DocumentID: doc.ID,
			FullName:   username + " surname",
			Phone:      phone,
			BirthDate:  date(1990, 6, 15),
			Discount:   discount,
		}
		return s.CreateGuest(ctx, &g)
	})
	if err != nil {
		t.Fatalf("seed guest %s: %v", username, err)
	}
	return g
}

func TestRepo_MySQL_RegistrationAndSearch(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	seedGuest(t, repo, "anna", 4321, 111111, "79000000001", 0.05)
	seedGuest(t, repo, "boris", 4321, 222222, "79000000002", 0.20)
	clara := seedGuest(t, repo, "clara", 4321, 333333, "79000000003", 0.20)

	t.Run("duplicate document maps to field conflict", func(t *testing.T) {
		doc := domain.Document{Series: 4321, Number: 111111, IssuedOn: date(2016, 1, 1), IssuedBy: "MVD 50"}
		err := repo.CreateDocument(ctx, &doc)
		verr, ok := domain.AsValidation(err)
		if !ok || !verr.Has("document_number") {
			t.Fatalf("want conflict on document_number, got %v", err)
		}
	})

	t.Run("rollback leaves no partial rows", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := repo.WithinTx(ctx, func(s domain.Store) error {
			doc := domain.Document{Series: 9999, Number: 999999, IssuedOn: date(2020, 1, 1), IssuedBy: "MVD 1"}
			if err := s.CreateDocument(ctx, &doc); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("want sentinel, got %v", err)
		}
		taken, err := repo.DocumentTaken(ctx, 9999, 999999)
		if err != nil {
			t.Fatalf("DocumentTaken: %v", err)
		}
		if taken {
			t.Fatal("document survived rollback")
		}
	})

	t.Run("concurrent same-phone inserts admit exactly one", func(t *testing.T) {
		doc1 := domain.Document{Series: 5555, Number: 100001, IssuedOn: date(2018, 1, 1), IssuedBy: "MVD 2"}
		doc2 := domain.Document{Series: 5555, Number: 100002, IssuedOn: date(2018, 1, 1), IssuedBy: "MVD 2"}
		acc1 := domain.Account{Username: "race1", Email: "race1@example.com", PasswordHash: "x", Role: domain.RoleClient}
		acc2 := domain.Account{Username: "race2", Email: "race2@example.com", PasswordHash: "x", Role: domain.RoleClient}
		for _, err := range []error{
			repo.CreateDocument(ctx, &doc1), repo.CreateDocument(ctx, &doc2),
			repo.CreateAccount(ctx, &acc1), repo.CreateAccount(ctx, &acc2),
		} {
			if err != nil {
				t.Fatalf("seed race fixtures: %v", err)
			}
		}

		guests := []domain.Guest{
			{AccountID: acc1.ID, DocumentID: doc1.ID, FullName: "Race One", Phone: "79119999999", BirthDate: date(1991, 1, 1)},
			{AccountID: acc2.ID, DocumentID: doc2.ID, FullName: "Race Two", Phone: "79119999999", BirthDate: date(1992, 2, 2)},
		}
		errs := make([]error, len(guests))
		var wg sync.WaitGroup
		for i := range guests {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.CreateGuest(ctx, &guests[i])
			}(i)
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			verr, ok := domain.AsValidation(err)
			if !ok || !verr.Taken("guest_phone") {
				t.Fatalf("unexpected error: %v", err)
			}
			conflicts++
		}
		if wins != 1 || conflicts != 1 {
			t.Fatalf("want one winner and one conflict, got wins=%d conflicts=%d", wins, conflicts)
		}
	})

	t.Run("search by document number", func(t *testing.T) {
		views, err := repo.ListGuests(ctx, domain.GuestQuery{Search: "333333"})
		if err != nil {
			t.Fatalf("ListGuests: %v", err)
		}
		if len(views) != 1 || views[0].ID != clara.ID {
			t.Fatalf("want clara only, got %+v", views)
		}
	})

	t.Run("discount sort is non-increasing and id-stable on ties", func(t *testing.T) {
		views, err := repo.ListGuests(ctx, domain.GuestQuery{Sort: domain.GuestSortDiscountDesc})
		if err != nil {
			t.Fatalf("ListGuests: %v", err)
		}
		if len(views) < 3 {
			t.Fatalf("want at least 3 guests, got %d", len(views))
		}
		for i := 1; i < len(views); i++ {
			prev, cur := views[i-1], views[i]
			if cur.Discount > prev.Discount {
				t.Fatalf("discount order broken at %d: %v after %v", i, cur.Discount, prev.Discount)
			}
			if cur.Discount == prev.Discount && cur.ID < prev.ID {
				t.Fatalf("tie not id-stable at %d", i)
			}
		}
		if !views[0].HighDiscount {
			t.Fatal("top guest should carry the high-discount flag")
		}
	})

	t.Run("status update is guarded by existing row", func(t *testing.T) {
		err := repo.UpdateReservationStatus(ctx, 424242, domain.ReservationCompleted)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("want not found, got %v", err)
		}
	})
}
