package saves

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dronefarm/internal/adapter/repo/memory"
	"dronefarm/internal/app/command"
	"dronefarm/internal/app/ports"
	"dronefarm/internal/app/script"
	"dronefarm/internal/domain/console"
	"dronefarm/internal/domain/farm"
)

type fixture struct {
	uc       UseCase
	engine   *command.Engine
	sessions *script.Registry
	repo     memory.SaveRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	e, err := command.NewEngine(command.Config{Farm: farm.DefaultConfig(), Catalog: farm.DefaultCatalog()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	reg := script.NewRegistry(script.RegistryConfig{Engine: e})
	repo := memory.NewSaveRepo(memory.NewStore())
	return fixture{
		uc: UseCase{
			Repo:     repo,
			Farm:     e,
			Sessions: reg,
			Now:      func() time.Time { return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC) },
		},
		engine:   e,
		sessions: reg,
		repo:     repo,
	}
}

func TestUseCase_SaveThenLoadRestoresEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.engine.Execute(ctx, command.Request{Name: command.Plow}, nil)
	s := f.sessions.Create(script.CreateOptions{Help: true})
	fut, err := s.Submit(ctx, "buy('wheat_seeds', 2)")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := fut.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	wantFarm := f.engine.Snapshot()
	wantSessions := f.sessions.Snapshots()

	sum, err := f.uc.Save(ctx, " slot1 ")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if sum.Name != "slot1" {
		t.Fatalf("expected trimmed name, got %q", sum.Name)
	}

	f.engine.Execute(ctx, command.Request{Name: command.Sell, Item: "wheat_seeds", Qty: 2}, nil)
	f.sessions.Create(script.CreateOptions{})

	if _, err := f.uc.Load(ctx, "slot1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(wantFarm, f.engine.Snapshot()); diff != "" {
		t.Fatalf("farm mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantSessions, f.sessions.Snapshots()); diff != "" {
		t.Fatalf("sessions mismatch (-want +got):\n%s", diff)
	}
}

func TestUseCase_LoadInvalidLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Create(script.CreateOptions{})
	bad := f.engine.Snapshot()
	bad.Money = -5
	f.repo.Put(ctx, ports.SaveRecord{Name: "broken", Farm: bad, Sessions: []console.SessionSnapshot{{ID: "x"}}})

	before := f.engine.Snapshot()
	beforeSessions := f.sessions.Snapshots()
	if _, err := f.uc.Load(ctx, "broken"); !errors.Is(err, farm.ErrInvalidSnapshot) {
		t.Fatalf("expected invalid snapshot, got %v", err)
	}
	if diff := cmp.Diff(before, f.engine.Snapshot()); diff != "" {
		t.Fatalf("farm changed:\n%s", diff)
	}
	if diff := cmp.Diff(beforeSessions, f.sessions.Snapshots()); diff != "" {
		t.Fatalf("sessions changed:\n%s", diff)
	}
}

func TestUseCase_LoadOversizedFarmLeavesSessionsUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Create(script.CreateOptions{})
	big := farm.Snapshot{
		Grid:          make([]farm.Tile, 49),
		Size:          7,
		Inventory:     map[string]int{},
		UnlockedCrops: []farm.CropType{farm.CropWheat},
	}
	f.repo.Put(ctx, ports.SaveRecord{
		Name:     "huge",
		Farm:     big,
		Sessions: []console.SessionSnapshot{{ID: "x"}, {ID: "y"}},
	})

	before := f.engine.Snapshot()
	beforeSessions := f.sessions.Snapshots()
	if _, err := f.uc.Load(ctx, "huge"); !errors.Is(err, farm.ErrInvalidSnapshot) {
		t.Fatalf("expected invalid snapshot, got %v", err)
	}
	if diff := cmp.Diff(before, f.engine.Snapshot()); diff != "" {
		t.Fatalf("farm changed:\n%s", diff)
	}
	if diff := cmp.Diff(beforeSessions, f.sessions.Snapshots()); diff != "" {
		t.Fatalf("sessions changed:\n%s", diff)
	}
}

func TestUseCase_LoadStopsRunningPrograms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.uc.Save(ctx, "clean"); err != nil {
		t.Fatalf("save: %v", err)
	}
	want := f.engine.Snapshot()

	s := f.sessions.Create(script.CreateOptions{})
	fut, err := s.Submit(ctx, `var t0 = Date.now(); while (Date.now() - t0 < 150) {} buy("wheat_seeds", 3)`)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := f.uc.Load(ctx, "clean"); err != nil {
		t.Fatalf("load: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := fut.Wait(waitCtx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if diff := cmp.Diff(want, f.engine.Snapshot()); diff != "" {
		t.Fatalf("farm changed after load (-want +got):\n%s", diff)
	}
	if got := len(f.sessions.List()); got != 0 {
		t.Fatalf("expected saved empty registry, got %d sessions", got)
	}
}

func TestUseCase_Names(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"", "   ", "a/b", "line\nbreak"} {
		if _, err := f.uc.Save(ctx, name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("save %q: expected invalid name, got %v", name, err)
		}
	}
	if _, err := f.uc.Load(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUseCase_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"b", "a"} {
		if _, err := f.uc.Save(ctx, name); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	list, err := f.uc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "a" {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := f.uc.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.uc.Delete(ctx, "a"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
