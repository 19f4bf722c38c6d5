package saves

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dronefarm/internal/app/ports"
	"dronefarm/internal/domain/console"
	"dronefarm/internal/domain/farm"
)

var ErrInvalidName = errors.New("invalid save name")

const maxNameLen = 64

type Farm interface {
	Snapshot() farm.Snapshot
	ValidateSnapshot(snap farm.Snapshot) error
	Restore(snap farm.Snapshot) error
}

type Sessions interface {
	Snapshots() []console.SessionSnapshot
	Replace(snaps []console.SessionSnapshot) error
}

// UseCase captures and restores the whole game: the farm plus every
// console session.
type UseCase struct {
	Repo     ports.SaveRepository
	Farm     Farm
	Sessions Sessions
	Now      func() time.Time
}

func (u UseCase) Save(ctx context.Context, name string) (ports.SaveSummary, error) {
	name, err := normalizeName(name)
	if err != nil {
		return ports.SaveSummary{}, err
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	rec := ports.SaveRecord{
		Name:     name,
		Farm:     u.Farm.Snapshot(),
		Sessions: u.Sessions.Snapshots(),
		SavedAt:  nowFn().UTC(),
	}
	if err := u.Repo.Put(ctx, rec); err != nil {
		return ports.SaveSummary{}, fmt.Errorf("put save %s: %w", name, err)
	}
	return ports.SaveSummary{Name: rec.Name, SavedAt: rec.SavedAt}, nil
}

// Load replaces the session registry and the farm. A record whose farm or
// sessions fail validation leaves both untouched. Evaluations running in
// the replaced sessions are stopped before the farm is restored.
func (u UseCase) Load(ctx context.Context, name string) (ports.SaveRecord, error) {
	name, err := normalizeName(name)
	if err != nil {
		return ports.SaveRecord{}, err
	}
	rec, err := u.Repo.Get(ctx, name)
	if err != nil {
		return ports.SaveRecord{}, err
	}
	if err := u.Farm.ValidateSnapshot(rec.Farm); err != nil {
		return ports.SaveRecord{}, err
	}
	prev := u.Sessions.Snapshots()
	if err := u.Sessions.Replace(rec.Sessions); err != nil {
		return ports.SaveRecord{}, err
	}
	if err := u.Farm.Restore(rec.Farm); err != nil {
		if rbErr := u.Sessions.Replace(prev); rbErr != nil {
			return ports.SaveRecord{}, errors.Join(err, fmt.Errorf("roll back sessions: %w", rbErr))
		}
		return ports.SaveRecord{}, err
	}
	return rec, nil
}

func (u UseCase) List(ctx context.Context) ([]ports.SaveSummary, error) {
	return u.Repo.List(ctx)
}

func (u UseCase) Delete(ctx context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	return u.Repo.Delete(ctx, name)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen || strings.ContainsAny(name, "/\\\n") {
		return "", ErrInvalidName
	}
	return name, nil
}
