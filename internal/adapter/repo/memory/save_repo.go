package memory

import (
	"context"
	"sort"

	"dronefarm/internal/app/ports"
	"dronefarm/internal/domain/console"
)

type SaveRepo struct {
	store *Store
}

func NewSaveRepo(store *Store) SaveRepo {
	return SaveRepo{store: store}
}

func (r SaveRepo) Put(_ context.Context, rec ports.SaveRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.saves[rec.Name] = cloneRecord(rec)
	return nil
}

func (r SaveRepo) Get(_ context.Context, name string) (ports.SaveRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.saves[name]
	if !ok {
		return ports.SaveRecord{}, ports.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r SaveRepo) List(_ context.Context) ([]ports.SaveSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]ports.SaveSummary, 0, len(r.store.saves))
	for _, rec := range r.store.saves {
		out = append(out, ports.SaveSummary{Name: rec.Name, SavedAt: rec.SavedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r SaveRepo) Delete(_ context.Context, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.saves[name]; !ok {
		return ports.ErrNotFound
	}
	delete(r.store.saves, name)
	return nil
}

func cloneRecord(rec ports.SaveRecord) ports.SaveRecord {
	rec.Farm = rec.Farm.Clone()
	if rec.Sessions != nil {
		sessions := make([]console.SessionSnapshot, len(rec.Sessions))
		for i, s := range rec.Sessions {
			s.OutputLog = console.CloneEntries(s.OutputLog)
			sessions[i] = s
		}
		rec.Sessions = sessions
	}
	return rec
}
