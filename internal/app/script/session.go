package script

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"dronefarm/internal/app/ports"
	"dronefarm/internal/domain/console"
)

var (
	ErrSessionBusy   = errors.New("session is running")
	ErrEmptyProgram  = errors.New("empty program")
	ErrSessionClosed = errors.New("session closed")
)

// Session is one console: the last submitted program, an append-only log,
// and a running flag that admits one evaluation at a time.
type Session struct {
	id      string
	exec    Executor
	metrics ports.ScriptMetrics
	maxDur  time.Duration

	mu      sync.Mutex
	program string
	log     []console.Entry
	running bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *Session) ID() string {
	return s.id
}

// Submit starts evaluating program on its own goroutine. Blank programs and
// submits made while an evaluation is in flight are refused and leave the
// log untouched.
func (s *Session) Submit(ctx context.Context, program string) (*Future, error) {
	if strings.TrimSpace(program) == "" {
		return nil, ErrEmptyProgram
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.running {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.program = program
	s.log = append(s.log, console.Entry{Text: ">>> " + program, Kind: console.KindCommand})
	s.mu.Unlock()

	fut := newFuture()
	go s.evaluate(runCtx, program, fut, done)
	return fut, nil
}

// stop refuses further submits and interrupts the evaluation in flight,
// returning once it has stopped issuing commands.
func (s *Session) stop() {
	s.mu.Lock()
	s.closed = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Session) evaluate(ctx context.Context, program string, fut *Future, done chan struct{}) {
	var out Outcome
	defer func() {
		s.mu.Lock()
		s.running = false
		s.cancel()
		s.cancel = nil
		s.done = nil
		s.mu.Unlock()
		close(done)
		if s.metrics != nil {
			s.metrics.RecordRun(out.Err != nil)
		}
		fut.resolve(out)
	}()

	sb, err := newSandbox(ctx, s.exec, s)
	if err != nil {
		out.Err = err
		s.fault(err)
		return
	}
	val, err := sb.run(program, s.maxDur)
	if err != nil {
		out.Err = err
		s.fault(err)
		return
	}
	if val != nil && !isUndefined(val) {
		out.Value = render(val)
		s.Print(out.Value)
	}
}

// Print appends a normal entry. Command results and print() output land
// here in call order.
func (s *Session) Print(text string) {
	s.append(console.Entry{Text: text, Kind: console.KindNormal})
}

func (s *Session) fault(err error) {
	s.append(console.Entry{Text: "Error: " + err.Error(), Kind: console.KindError})
}

func (s *Session) append(e console.Entry) {
	s.mu.Lock()
	s.log = append(s.log, e)
	s.mu.Unlock()
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Session) ProgramText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

// Log returns a copy of the output log.
func (s *Session) Log() []console.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return console.CloneEntries(s.log)
}

func (s *Session) Snapshot() console.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return console.SessionSnapshot{
		ID:          s.id,
		ProgramText: s.program,
		OutputLog:   console.CloneEntries(s.log),
	}
}
