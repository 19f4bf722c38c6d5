package script

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"dronefarm/internal/app/ports"
	"dronefarm/internal/domain/console"
)

var ErrInvalidSessions = errors.New("invalid session snapshots")

// Engine is the farm as the session registry sees it.
type Engine interface {
	Executor
	Summary() string
}

type RegistryConfig struct {
	Engine      Engine
	Metrics     ports.ScriptMetrics
	MaxDuration time.Duration
	NewID       func() string
}

type CreateOptions struct {
	// Help seeds the log with the welcome text and the farm summary.
	Help bool
}

// Registry owns every session. Sessions exist from Create until Destroy or
// until a Replace drops them.
type Registry struct {
	engine  Engine
	metrics ports.ScriptMetrics
	maxDur  time.Duration
	newID   func() string

	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string
}

func NewRegistry(cfg RegistryConfig) *Registry {
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	maxDur := cfg.MaxDuration
	if maxDur <= 0 {
		maxDur = DefaultMaxDuration
	}
	return &Registry{
		engine:   cfg.Engine,
		metrics:  cfg.Metrics,
		maxDur:   maxDur,
		newID:    newID,
		sessions: map[string]*Session{},
	}
}

func (r *Registry) Create(opts CreateOptions) *Session {
	s := r.newSession(r.newID())
	if opts.Help {
		s.log = append(s.log, console.HelpText()...)
		if r.engine != nil {
			s.log = append(s.log, console.Entry{Text: "Farm initialized: " + r.engine.Summary(), Kind: console.KindInfo})
		}
	}
	r.mu.Lock()
	r.sessions[s.id] = s
	r.order = append(r.order, s.id)
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return s, nil
}

// Destroy removes a session and interrupts its evaluation in flight. It
// returns once that evaluation can no longer touch the farm.
func (r *Registry) Destroy(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return ports.ErrNotFound
	}
	delete(r.sessions, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	s.stop()
	return nil
}

// List returns the sessions in creation order.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sessions[id])
	}
	return out
}

func (r *Registry) Snapshots() []console.SessionSnapshot {
	sessions := r.List()
	out := make([]console.SessionSnapshot, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Replace swaps the whole registry for the given sessions. Restored
// sessions are idle, and evaluations of the dropped sessions are
// interrupted before Replace returns. Nothing changes if the snapshots are
// malformed.
func (r *Registry) Replace(snaps []console.SessionSnapshot) error {
	sessions := make(map[string]*Session, len(snaps))
	order := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		if snap.ID == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidSessions)
		}
		if _, dup := sessions[snap.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidSessions, snap.ID)
		}
		s := r.newSession(snap.ID)
		s.program = snap.ProgramText
		s.log = console.CloneEntries(snap.OutputLog)
		sessions[snap.ID] = s
		order = append(order, snap.ID)
	}
	r.mu.Lock()
	dropped := r.sessions
	r.sessions = sessions
	r.order = order
	r.mu.Unlock()
	for _, s := range dropped {
		s.stop()
	}
	return nil
}

func (r *Registry) newSession(id string) *Session {
	return &Session{
		id:      id,
		exec:    r.engine,
		metrics: r.metrics,
		maxDur:  r.maxDur,
	}
}
