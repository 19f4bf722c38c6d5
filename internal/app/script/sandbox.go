package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"dronefarm/internal/app/command"
	"dronefarm/internal/domain/farm"
)

const (
	DefaultMaxDuration = 5 * time.Second

	timeoutMessage    = "execution timed out"
	unresolvedMessage = "program result never resolved"
)

// Fault is an evaluation failure: a syntax error, a thrown value, an
// interrupt, or a promise that did not fulfil.
type Fault struct {
	Message string
}

func (f *Fault) Error() string {
	return f.Message
}

// Executor is the command surface a program runs against.
type Executor interface {
	Execute(ctx context.Context, req command.Request, sink command.Sink) command.Result
}

// sandbox is a fresh goja runtime whose globals are the farm commands and
// print. Nothing from the host process is reachable from program text.
type sandbox struct {
	vm   *goja.Runtime
	ctx  context.Context
	exec Executor
	sink command.Sink
}

func newSandbox(ctx context.Context, exec Executor, sink command.Sink) (*sandbox, error) {
	sb := &sandbox{vm: goja.New(), ctx: ctx, exec: exec, sink: sink}
	if err := sb.bind(); err != nil {
		return nil, err
	}
	return sb, nil
}

// requestDecoders turn a script call's arguments into a command request.
var requestDecoders = map[command.Name]func(goja.FunctionCall) command.Request{
	command.Move: func(call goja.FunctionCall) command.Request {
		return command.Request{
			Name: command.Move,
			X:    int(call.Argument(0).ToInteger()),
			Y:    int(call.Argument(1).ToInteger()),
		}
	},
	command.Plow:     bare(command.Plow),
	command.Harvest:  bare(command.Harvest),
	command.Scan:     bare(command.Scan),
	command.Position: bare(command.Position),
	command.Expand:   bare(command.Expand),
	command.Plant: func(call goja.FunctionCall) command.Request {
		return command.Request{Name: command.Plant, Crop: argString(call, 0)}
	},
	command.Buy: func(call goja.FunctionCall) command.Request {
		return command.Request{Name: command.Buy, Item: argString(call, 0), Qty: argQty(call, 1)}
	},
	command.Sell: func(call goja.FunctionCall) command.Request {
		return command.Request{Name: command.Sell, Item: argString(call, 0), Qty: argQty(call, 1)}
	},
}

func bare(name command.Name) func(goja.FunctionCall) command.Request {
	return func(goja.FunctionCall) command.Request {
		return command.Request{Name: name}
	}
}

func (sb *sandbox) bind() error {
	for _, name := range command.SupportedNames() {
		decode, ok := requestDecoders[name]
		if !ok {
			return fmt.Errorf("bind %s: no argument decoder", name)
		}
		fn := func(call goja.FunctionCall) goja.Value {
			return sb.call(decode(call))
		}
		if err := sb.vm.Set(string(name), fn); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	if err := sb.vm.Set("print", sb.print); err != nil {
		return fmt.Errorf("bind print: %w", err)
	}
	cons := sb.vm.NewObject()
	if err := cons.Set("log", sb.print); err != nil {
		return fmt.Errorf("bind console.log: %w", err)
	}
	return sb.vm.Set("console", cons)
}

func (sb *sandbox) call(req command.Request) goja.Value {
	res := sb.exec.Execute(sb.ctx, req, sb.sink)
	if !res.OK {
		return sb.vm.ToValue(false)
	}
	switch v := res.Value.(type) {
	case nil:
		return sb.vm.ToValue(true)
	case farm.Position:
		obj := sb.vm.NewObject()
		_ = obj.Set("x", v.X)
		_ = obj.Set("y", v.Y)
		return obj
	default:
		return sb.vm.ToValue(v)
	}
}

func (sb *sandbox) print(call goja.FunctionCall) goja.Value {
	parts := make([]string, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		parts = append(parts, render(arg))
	}
	sb.sink.Print(strings.Join(parts, " "))
	return goja.Undefined()
}

// run evaluates program and settles its completion value. A program that
// runs past maxDur or outlives ctx is interrupted.
func (sb *sandbox) run(program string, maxDur time.Duration) (goja.Value, error) {
	if maxDur <= 0 {
		maxDur = DefaultMaxDuration
	}
	timer := time.AfterFunc(maxDur, func() { sb.vm.Interrupt(timeoutMessage) })
	defer timer.Stop()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-sb.ctx.Done():
			sb.vm.Interrupt(sb.ctx.Err().Error())
		case <-stop:
		}
	}()

	val, err := sb.vm.RunString(program)
	if err != nil {
		return nil, asFault(err)
	}
	if obj, ok := val.(*goja.Object); ok {
		if p, ok := obj.Export().(*goja.Promise); ok {
			switch p.State() {
			case goja.PromiseStateFulfilled:
				return p.Result(), nil
			case goja.PromiseStateRejected:
				return nil, &Fault{Message: thrownMessage(p.Result())}
			default:
				return nil, &Fault{Message: unresolvedMessage}
			}
		}
	}
	return val, nil
}

func asFault(err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return &Fault{Message: thrownMessage(ex.Value())}
	}
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		return &Fault{Message: fmt.Sprint(ie.Value())}
	}
	return &Fault{Message: err.Error()}
}

// thrownMessage prefers the message property of Error objects, so a
// ReferenceError reads "x is not defined".
func thrownMessage(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if obj, ok := v.(*goja.Object); ok {
		if m := obj.Get("message"); m != nil && !goja.IsUndefined(m) {
			return m.String()
		}
	}
	return v.String()
}

// render formats a value the way the console shows it: strings verbatim,
// objects as JSON.
func render(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	if obj, ok := v.(*goja.Object); ok && obj.ClassName() != "Function" {
		if b, err := json.Marshal(obj.Export()); err == nil {
			return string(b)
		}
	}
	return v.String()
}

func argString(call goja.FunctionCall, i int) string {
	arg := call.Argument(i)
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		return ""
	}
	return arg.String()
}

func argQty(call goja.FunctionCall, i int) int {
	arg := call.Argument(i)
	if goja.IsUndefined(arg) {
		return 1
	}
	return int(arg.ToInteger())
}

func isUndefined(v goja.Value) bool {
	return goja.IsUndefined(v)
}
