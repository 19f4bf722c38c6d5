package command

import (
	"context"
	"strings"
	"sync"
	"time"

	"dronefarm/internal/app/ports"
	"dronefarm/internal/domain/farm"
)

type Config struct {
	Farm      farm.Config
	Catalog   farm.Catalog
	Now       func() time.Time
	Metrics   ports.CommandMetrics
	Publisher ports.FarmPublisher
}

// Engine owns the farm. Every command, growth tick, restore and unlock runs
// under mu, so callers never observe a half-applied mutation.
type Engine struct {
	mu        sync.Mutex
	st        farm.State
	catalog   farm.Catalog
	now       func() time.Time
	metrics   ports.CommandMetrics
	publisher ports.FarmPublisher
	specs     map[Name]Spec
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Catalog.Crops == nil && cfg.Catalog.Prices == nil {
		cfg.Catalog = farm.DefaultCatalog()
	}
	st, err := farm.NewState(cfg.Farm, cfg.Catalog)
	if err != nil {
		return nil, err
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Engine{
		st:        st,
		catalog:   cfg.Catalog,
		now:       nowFn,
		metrics:   cfg.Metrics,
		publisher: cfg.Publisher,
		specs:     commandRegistry(),
	}, nil
}

// Execute runs one command. The outcome text always goes to sink; a
// rejected command leaves the farm untouched.
func (e *Engine) Execute(ctx context.Context, req Request, sink Sink) Result {
	req.Name = Name(strings.TrimSpace(string(req.Name)))
	if err := ctx.Err(); err != nil {
		res := Result{Message: "Error: " + err.Error(), Err: err}
		emit(sink, res.Message)
		return res
	}
	spec, ok := e.specs[req.Name]
	if !ok {
		err := reject(ErrUnknownCommand, "Unknown command: %s", req.Name)
		res := Result{Message: rejectionText(err), Err: err}
		emit(sink, res.Message)
		e.recordRejected(req.Name)
		return res
	}

	e.mu.Lock()
	cc := &Context{State: &e.st, Catalog: e.catalog, Req: req, Now: e.now()}
	var res Result
	if err := spec.Handler.Precheck(cc); err != nil {
		res = Result{Message: rejectionText(err), Err: err}
	} else {
		res = spec.Handler.Apply(cc)
		if res.OK && spec.Mutates {
			e.publishLocked()
		}
	}
	e.mu.Unlock()

	emit(sink, res.Message)
	if res.OK {
		e.recordSuccess(req.Name)
	} else {
		e.recordRejected(req.Name)
	}
	return res
}

func (e *Engine) Snapshot() farm.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Snapshot()
}

// Summary renders the one-line farm description shown when a console opens.
func (e *Engine) Summary() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.String()
}

// Restore replaces the farm wholesale. Invalid snapshots are refused and
// the current farm is kept.
func (e *Engine) Restore(snap farm.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := e.restoredLocked(snap)
	if err != nil {
		return err
	}
	e.st = st
	e.publishLocked()
	return nil
}

// ValidateSnapshot reports whether Restore would accept snap, without
// touching the farm.
func (e *Engine) ValidateSnapshot(snap farm.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.restoredLocked(snap)
	return err
}

func (e *Engine) restoredLocked(snap farm.Snapshot) (farm.State, error) {
	st, err := farm.FromSnapshot(snap, e.st.MaxSize)
	if err != nil {
		return farm.State{}, err
	}
	if err := st.CheckCatalog(e.catalog); err != nil {
		return farm.State{}, err
	}
	return st, nil
}

// UnlockCrop buys a crop on the tech tree. The cost is debited once and
// unlocks are never revoked, so unlocking twice is free.
func (e *Engine) UnlockCrop(crop farm.CropType) error {
	def, ok := e.catalog.Crop(crop)
	if !ok {
		return ErrUnknownCrop
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st.Unlocked[crop] {
		return nil
	}
	for _, req := range def.Requires {
		if !e.st.Unlocked[req] {
			return reject(ErrPrerequisiteLocked, "Cannot unlock %s - Requires %s", crop, req)
		}
	}
	if e.st.Money < def.UnlockCost {
		return reject(ErrInsufficientFunds, "Cannot unlock %s - Not enough money!", crop)
	}
	e.st.Money -= def.UnlockCost
	if e.st.Unlocked == nil {
		e.st.Unlocked = map[farm.CropType]bool{}
	}
	e.st.Unlocked[crop] = true
	e.publishLocked()
	return nil
}

func (e *Engine) Prices() farm.PriceList {
	return e.catalog.PriceList()
}

// AdvanceGrowth ripens crops whose growth time has elapsed at now.
func (e *Engine) AdvanceGrowth(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.st.AdvanceGrowth(now, e.catalog)
	if n > 0 {
		e.publishLocked()
	}
	return n
}

func (e *Engine) publishLocked() {
	if e.publisher == nil {
		return
	}
	e.publisher.Publish(e.st.Snapshot())
}

func (e *Engine) recordSuccess(n Name) {
	if e.metrics != nil {
		e.metrics.RecordSuccess(string(n))
	}
}

func (e *Engine) recordRejected(n Name) {
	if e.metrics != nil {
		e.metrics.RecordRejected(string(n))
	}
}

func emit(sink Sink, text string) {
	if sink == nil || text == "" {
		return
	}
	sink.Print(text)
}
