package inmemory

import "sync"

type Snapshot struct {
	CommandTotal    uint64            `json:"command_total"`
	CommandSuccess  uint64            `json:"command_success"`
	CommandRejected uint64            `json:"command_rejected"`
	ByCommand       map[string]uint64 `json:"by_command"`
	RejectedBy      map[string]uint64 `json:"rejected_by_command"`
	ScriptRuns      uint64            `json:"script_runs"`
	ScriptFaults    uint64            `json:"script_faults"`
}

type Recorder struct {
	mu         sync.Mutex
	success    uint64
	rejected   uint64
	byCommand  map[string]uint64
	rejectedBy map[string]uint64
	runs       uint64
	faults     uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byCommand:  map[string]uint64{},
		rejectedBy: map[string]uint64{},
	}
}

func (r *Recorder) RecordSuccess(command string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.byCommand[command]++
}

func (r *Recorder) RecordRejected(command string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
	r.rejectedBy[command]++
}

func (r *Recorder) RecordRun(faulted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	if faulted {
		r.faults++
	}
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		CommandSuccess:  r.success,
		CommandRejected: r.rejected,
		CommandTotal:    r.success + r.rejected,
		ByCommand:       make(map[string]uint64, len(r.byCommand)),
		RejectedBy:      make(map[string]uint64, len(r.rejectedBy)),
		ScriptRuns:      r.runs,
		ScriptFaults:    r.faults,
	}
	for k, v := range r.byCommand {
		out.ByCommand[k] = v
	}
	for k, v := range r.rejectedBy {
		out.RejectedBy[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
