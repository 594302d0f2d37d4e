package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/felixgeelhaar/statekit"

	"github.com/matzehuels/pubplot/pkg/errors"
)

// State is a lifecycle state.
type State string

const (
	StateCreated      State = "created"
	StateValidated    State = "validated"
	StateSurfaceReady State = "surface_ready"
	StateDataPrepared State = "data_prepared"
	StateStyled       State = "styled"
	StateRendered     State = "rendered"
	StateFinalized    State = "finalized"
	StateSaved        State = "saved"
	StateClosed       State = "closed"
)

// Events.
const (
	evValidate = "VALIDATE"
	evAcquire  = "ACQUIRE"
	evPrepare  = "PREPARE"
	evStyle    = "STYLE"
	evRender   = "RENDER"
	evFinalize = "FINALIZE"
	evSave     = "SAVE"
	evClose    = "CLOSE"
)

// transitions is the guard table. Every event sent to the machine must
// appear here for the current state.
var transitions = map[State]map[string]State{
	StateCreated:      {evValidate: StateValidated, evClose: StateClosed},
	StateValidated:    {evAcquire: StateSurfaceReady, evClose: StateClosed},
	StateSurfaceReady: {evPrepare: StateDataPrepared, evClose: StateClosed},
	StateDataPrepared: {evStyle: StateStyled, evClose: StateClosed},
	StateStyled:       {evRender: StateRendered, evClose: StateClosed},
	StateRendered:     {evFinalize: StateFinalized, evClose: StateClosed},
	StateFinalized:    {evSave: StateSaved, evClose: StateClosed},
	StateSaved:        {evSave: StateSaved, evClose: StateClosed},
}

// CanTransition reports whether ev is allowed in state from.
func CanTransition(from State, ev string) bool {
	_, ok := transitions[from][ev]
	return ok
}

// Transition is one recorded state change.
type Transition struct {
	Event string    `json:"event"`
	From  State     `json:"from"`
	To    State     `json:"to"`
	At    time.Time `json:"at"`
}

type machineContext struct {
	id      string
	logger  *log.Logger
	history []Transition
}

func recordTransition(c **machineContext, ev statekit.Event) {
	if c == nil || *c == nil {
		return
	}
	if t, ok := ev.Payload.(Transition); ok {
		(*c).history = append((*c).history, t)
	}
}

func logStateEntry(c **machineContext, ev statekit.Event) {
	if c == nil || *c == nil || (*c).logger == nil {
		return
	}
	if t, ok := ev.Payload.(Transition); ok {
		(*c).logger.Debug("session transition", "session", (*c).id, "event", t.Event, "from", t.From, "to", t.To)
	}
}

func newMachine() (*statekit.MachineConfig[*machineContext], error) {
	return statekit.NewMachine[*machineContext]("session").
		WithInitial(stateID(StateCreated)).
		WithContext(&machineContext{}).
		WithAction("logEntry", logStateEntry).
		WithAction("recordTransition", recordTransition).
		State(stateID(StateCreated)).
			OnEntry("logEntry").
			On(evValidate).Target(stateID(StateValidated)).Do("recordTransition").
			On(evClose).Target(stateID(StateClosed)).Do("recordTransition").
			Done().
		State(stateID(StateValidated)).
			OnEntry("logEntry").
			On(evAcquire).Target(stateID(StateSurfaceReady)).Do("recordTransition").
			On(evClose).Target(stateID(StateClosed)).Do("recordTransition").
			Done().
		State(stateID(StateSurfaceReady)).
			OnEntry("logEntry").
			On(evPrepare).Target(stateID(StateDataPrepared)).Do("recordTransition").
			On(evClose).Target(stateID(StateClosed)).Do("recordTransition").
			Done().
		State(stateID(StateDataPrepared)).
			OnEntry("logEntry").
			On(evStyle).Target(stateID(StateStyled)).Do("recordTransition").
			On(evClose).Target(stateID(StateClosed)).Do("recordTransition").
			Done().
		State(stateID(StateStyled)).
			OnEntry("logEntry").
			On(evRender).Target(stateID(StateRendered)).Do("recordTransition").
			On(evClose).Target(stateID(StateClosed)).Do("recordTransition").
			Done().
		State(stateID(StateRendered)).
			OnEntry("logEntry").
			On(evFinalize).Target(stateID(StateFinalized)).Do("recordTransition").
			On(evClose).Target(stateID(StateClosed)).Do("recordTransition").
			Done().
		State(stateID(StateFinalized)).
			OnEntry("logEntry").
			On(evSave).Target(stateID(StateSaved)).Do("recordTransition").
			On(evClose).Target(stateID(StateClosed)).Do("recordTransition").
			Done().
		// saved -> saved is handled by the guard table without a machine step
		State(stateID(StateSaved)).
			OnEntry("logEntry").
			On(evClose).Target(stateID(StateClosed)).Do("recordTransition").
			Done().
		State(stateID(StateClosed)).
			Final().
			OnEntry("logEntry").
			Done().
		Build()
}

func stateID(s State) statekit.StateID { return statekit.StateID(s) }

// lifecycle wraps the statekit interpreter with the guard table.
type lifecycle struct {
	interp *statekit.Interpreter[*machineContext]
	ctx    *machineContext
}

func newLifecycle(id string, logger *log.Logger) (*lifecycle, error) {
	m, err := newMachine()
	if err != nil {
		return nil, fmt.Errorf("build session machine: %w", err)
	}
	ctx := &machineContext{id: id, logger: logger}
	interp := statekit.NewInterpreter(m)
	interp.UpdateContext(func(c **machineContext) {
		*c = ctx
	})
	interp.Start()
	return &lifecycle{interp: interp, ctx: ctx}, nil
}

func (l *lifecycle) state() State {
	return State(l.interp.State().Value)
}

// fire moves the machine along ev. Events the table does not allow are
// SESSION_STATE errors and never reach the interpreter, which panics on
// unknown events.
func (l *lifecycle) fire(ev string) error {
	from := l.state()
	to, ok := transitions[from][ev]
	if !ok {
		return errors.New(errors.ErrCodeSessionState, "cannot %s a session in state %s", strings.ToLower(ev), from)
	}
	t := Transition{Event: ev, From: from, To: to, At: time.Now()}
	if to == from {
		l.ctx.history = append(l.ctx.history, t)
		return nil
	}
	l.interp.Send(statekit.Event{Type: statekit.EventType(ev), Payload: t})
	return nil
}

func (l *lifecycle) history() []Transition {
	return append([]Transition(nil), l.ctx.history...)
}
