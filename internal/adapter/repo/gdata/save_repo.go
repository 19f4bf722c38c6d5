// Package gdatarepo keeps saves in the per-user application data directory.
package gdatarepo

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"dronefarm/internal/adapter/savecodec"
	"dronefarm/internal/app/ports"
)

const (
	savesObject   = "saves"
	indexProperty = "index"
)

type indexEntry struct {
	Name    string    `yaml:"name"`
	SavedAt time.Time `yaml:"saved_at"`
}

// SaveRepo stores one compressed record per save plus a YAML index.
// A save exists only while it is listed in the index.
type SaveRepo struct {
	mu      sync.Mutex
	manager *gdata.Manager
}

func Open(appName string) (*SaveRepo, error) {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open gdata %s: %w", appName, err)
	}
	return &SaveRepo{manager: manager}, nil
}

func (r *SaveRepo) Put(_ context.Context, rec ports.SaveRecord) error {
	payload, err := savecodec.Encode(rec)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.manager.SaveObjectProp(savesObject, propKey(rec.Name), payload); err != nil {
		return fmt.Errorf("write save %s: %w", rec.Name, err)
	}
	idx, err := r.loadIndex()
	if err != nil {
		return err
	}
	idx[rec.Name] = indexEntry{Name: rec.Name, SavedAt: rec.SavedAt.UTC()}
	return r.storeIndex(idx)
}

func (r *SaveRepo) Get(_ context.Context, name string) (ports.SaveRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, err := r.loadIndex()
	if err != nil {
		return ports.SaveRecord{}, err
	}
	if _, ok := idx[name]; !ok || !r.manager.ObjectPropExists(savesObject, propKey(name)) {
		return ports.SaveRecord{}, ports.ErrNotFound
	}
	payload, err := r.manager.LoadObjectProp(savesObject, propKey(name))
	if err != nil {
		return ports.SaveRecord{}, fmt.Errorf("read save %s: %w", name, err)
	}
	rec, err := savecodec.Decode(payload)
	if err != nil {
		return ports.SaveRecord{}, fmt.Errorf("decode save %s: %w", name, err)
	}
	return rec, nil
}

func (r *SaveRepo) List(_ context.Context) ([]ports.SaveSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}
	out := make([]ports.SaveSummary, 0, len(idx))
	for _, e := range idx {
		out = append(out, ports.SaveSummary{Name: e.Name, SavedAt: e.SavedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete drops the save from the index and blanks its payload.
func (r *SaveRepo) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, err := r.loadIndex()
	if err != nil {
		return err
	}
	if _, ok := idx[name]; !ok {
		return ports.ErrNotFound
	}
	delete(idx, name)
	if err := r.storeIndex(idx); err != nil {
		return err
	}
	if err := r.manager.SaveObjectProp(savesObject, propKey(name), nil); err != nil {
		return fmt.Errorf("clear save %s: %w", name, err)
	}
	return nil
}

func (r *SaveRepo) loadIndex() (map[string]indexEntry, error) {
	idx := map[string]indexEntry{}
	if !r.manager.ObjectPropExists(savesObject, indexProperty) {
		return idx, nil
	}
	data, err := r.manager.LoadObjectProp(savesObject, indexProperty)
	if err != nil {
		return nil, fmt.Errorf("read save index: %w", err)
	}
	var entries []indexEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal save index: %w", err)
	}
	for _, e := range entries {
		idx[e.Name] = e
	}
	return idx, nil
}

func (r *SaveRepo) storeIndex(idx map[string]indexEntry) error {
	entries := make([]indexEntry, 0, len(idx))
	for _, e := range idx {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal save index: %w", err)
	}
	if err := r.manager.SaveObjectProp(savesObject, indexProperty, data); err != nil {
		return fmt.Errorf("write save index: %w", err)
	}
	return nil
}

// propKey maps a save name onto a property name that is safe as a file
// name on every platform.
func propKey(name string) string {
	return "save_" + hex.EncodeToString([]byte(name))
}
