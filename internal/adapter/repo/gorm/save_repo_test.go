package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dronefarm/internal/app/ports"
	"dronefarm/internal/domain/console"
	"dronefarm/internal/domain/farm"
)

func openTestDB(t *testing.T) SaveRepo {
	t.Helper()
	db, err := OpenSQLite("file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := ApplyMigrations(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSaveRepo(db)
}

func testRecord(t *testing.T, name string, savedAt time.Time) ports.SaveRecord {
	t.Helper()
	st, err := farm.NewState(farm.DefaultConfig(), farm.DefaultCatalog())
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	st.Money = 42
	return ports.SaveRecord{
		Name:     name,
		Farm:     st.Snapshot(),
		Sessions: []console.SessionSnapshot{{ID: "s1", ProgramText: "scan()", OutputLog: []console.Entry{{Text: ">>> scan()", Kind: console.KindCommand}}}},
		SavedAt:  savedAt,
	}
}

func TestSaveRepo_RoundTripSQLite(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := testRecord(t, "alpha", at)

	if err := repo.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := repo.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	rec.Farm.Money = 7
	rec.SavedAt = at.Add(time.Hour)
	if err := repo.Put(ctx, rec); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = repo.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if got.Farm.Money != 7 {
		t.Fatalf("expected overwritten money 7, got %d", got.Farm.Money)
	}
}

func TestSaveRepo_ListAndDeleteSQLite(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{"zeta", "beta"} {
		if err := repo.Put(ctx, testRecord(t, name, at)); err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "beta" || list[1].Name != "zeta" {
		t.Fatalf("unexpected list %+v", list)
	}
	if !list[0].SavedAt.Equal(at) {
		t.Fatalf("expected saved_at %v, got %v", at, list[0].SavedAt)
	}
	if err := repo.Delete(ctx, "beta"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "beta"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.Get(ctx, "beta"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveRepo_Postgres(t *testing.T) {
	dsn := os.Getenv("DRONEFARM_DB_DSN")
	if dsn == "" {
		t.Skip("DRONEFARM_DB_DSN is required for integration test")
	}
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := NewSaveRepo(db)
	name := "it-save-roundtrip"
	_ = repo.Delete(ctx, name)
	rec := testRecord(t, name, time.Now().UTC().Truncate(time.Second))
	if err := repo.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := repo.Get(ctx, name)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Farm.Money != rec.Farm.Money {
		t.Fatalf("expected money %d, got %d", rec.Farm.Money, got.Farm.Money)
	}
	_ = repo.Delete(ctx, name)
}
