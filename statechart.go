// Package calcx is the core of the calculator: a flat state machine engine
// whose states carry activities, and the Session that outlives one pass
// through the machine.
//
// A Machine selects the first transition, in declaration order, whose event
// matches and whose guard holds. Run executes the active state's activity,
// feeds the returned event back in and stops when a final state is reached.
package calcx

import (
	"context"
	"errors"
	"fmt"
)

type StateID int
type EventID int

type Event struct {
	ID      EventID
	Payload any
}

type Action func(ctx context.Context, evt *Event, from StateID, to StateID) error
type Guard func(ctx context.Context, evt *Event, from StateID, to StateID) (bool, error)

// Activity is the work a state performs while it is active. The returned
// event is fed back into the machine by Run.
type Activity func(ctx context.Context) (Event, error)

// TransitionHook observes every completed transition.
type TransitionHook func(from, to *State, evt Event)

// ---

type State struct {
	ID          StateID
	Name        string
	Transitions []*Transition
	EntryAction Action
	ExitAction  Action
	Activity    Activity
	Initial     bool
	Final       bool
}

type Transition struct {
	Event  Event
	Source *State
	Target *State // nil --> internal transition
	Guard  Guard  // nil --> always enabled
	Action Action // nil --> do nothing
}

// Machine is a flat statechart with a run loop driven by state activities.
type Machine struct {
	states  map[StateID]*State
	order   []*State
	initial *State
	current *State
	started bool
	hook    TransitionHook
}

// Option configures a Machine.
type Option func(*Machine)

// WithTransitionHook registers a hook called after each external or internal transition.
func WithTransitionHook(h TransitionHook) Option {
	return func(m *Machine) {
		m.hook = h
	}
}

var (
	ErrNoStates        = errors.New("no states provided")
	ErrNilState        = errors.New("nil state")
	ErrDuplicateState  = errors.New("duplicate state ID")
	ErrMultipleInitial = errors.New("more than one initial state")
	ErrNotStarted      = errors.New("machine not started")
	ErrNoActivity      = errors.New("state has no activity")
	ErrUnhandledEvent  = errors.New("no enabled transition for event")
)

//
// Public API
//

func (s *State) OnEntry(action Action) {
	s.EntryAction = action
}

func (s *State) OnExit(action Action) {
	s.ExitAction = action
}

func (s *State) On(e Event, target *State, guard *Guard, action *Action) {
	t := &Transition{
		Event:  e,
		Source: s,
		Target: target,
	}
	if guard != nil {
		t.Guard = *guard
	}
	if action != nil {
		t.Action = *action
	}
	s.Transitions = append(s.Transitions, t)
}

func (s *State) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("state(%d)", s.ID)
}

func NewMachine(states []*State, opts ...Option) (*Machine, error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}
	m := &Machine{
		states: map[StateID]*State{},
	}

	// Build LUT and find initial state.
	var initial *State
	for _, s := range states {
		if s == nil {
			return nil, ErrNilState
		}
		if _, exists := m.states[s.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateState, s.ID)
		}
		m.states[s.ID] = s
		m.order = append(m.order, s)
		if s.Initial {
			if initial != nil {
				return nil, ErrMultipleInitial
			}
			initial = s
		}
	}
	if initial == nil {
		initial = states[0] // First state is assigned as initial.
	}
	m.initial = initial

	for _, s := range states {
		for _, t := range s.Transitions {
			if t != nil && t.Source == nil {
				t.Source = s
			}
		}
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start enters the machine's initial state.
func (m *Machine) Start(ctx context.Context) error {
	m.current = m.initial
	m.started = true
	return m.current.enterState(ctx, nil, m.current.ID, m.current.ID)
}

// Send delivers an event to the current state. Events with no enabled
// transition are ignored.
func (m *Machine) Send(ctx context.Context, evt Event) error {
	_, err := m.send(ctx, evt)
	return err
}

// Run executes activities until a final state is reached.
func (m *Machine) Run(ctx context.Context) error {
	if !m.started {
		if err := m.Start(ctx); err != nil {
			return err
		}
	}
	for !m.current.Final {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.current.Activity == nil {
			return fmt.Errorf("%w: %s", ErrNoActivity, m.current)
		}
		evt, err := m.current.Activity(ctx)
		if err != nil {
			return fmt.Errorf("activity %s: %w", m.current, err)
		}
		handled, err := m.send(ctx, evt)
		if err != nil {
			return err
		}
		if !handled {
			return fmt.Errorf("%w: event %d in %s", ErrUnhandledEvent, evt.ID, m.current)
		}
	}
	return nil
}

// Current returns the active state, or nil before Start.
func (m *Machine) Current() *State {
	return m.current
}

// Done reports whether the machine has reached a final state.
func (m *Machine) Done() bool {
	return m.current != nil && m.current.Final
}

// States returns the machine's states in declaration order.
func (m *Machine) States() []*State {
	return append([]*State(nil), m.order...)
}

//
// Helper Functions (internal API)
//

func (m *Machine) send(ctx context.Context, evt Event) (bool, error) {
	if !m.started {
		return false, ErrNotStarted
	}

	t, err := m.pickTransition(ctx, m.current, &evt)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, nil
	}

	next, err := t.doTransition(ctx, &evt)
	if err != nil {
		return false, err
	}

	from := m.current
	m.current = next
	if m.hook != nil {
		m.hook(from, next, evt)
	}
	return true, nil
}

func (s *State) evaluateEntryAction(ctx context.Context, evt *Event, sourceID StateID, targetID StateID) error {
	if s.EntryAction != nil {
		return s.EntryAction(ctx, evt, sourceID, targetID)
	}
	return nil
}

func (s *State) evaluateExitAction(ctx context.Context, evt *Event, sourceID StateID, targetID StateID) error {
	if s.ExitAction != nil {
		return s.ExitAction(ctx, evt, sourceID, targetID)
	}
	return nil
}

// enterState enters a target state.
func (s *State) enterState(ctx context.Context, evt *Event, from StateID, to StateID) error {
	return s.evaluateEntryAction(ctx, evt, from, to)
}

// exitState exits a target state.
func (s *State) exitState(ctx context.Context, evt *Event, from StateID, to StateID) error {
	return s.evaluateExitAction(ctx, evt, from, to)
}

// pickTransition grabs the first transition in document order whose event
// matches and whose guard passes.
func (m *Machine) pickTransition(ctx context.Context, s *State, evt *Event) (*Transition, error) {
	for _, t := range s.Transitions {
		if t == nil || t.Event.ID != evt.ID {
			continue
		}
		pass, err := t.evaluateGuard(ctx, evt, t.Source.ID, t.targetID())
		if err != nil {
			return nil, fmt.Errorf("guard on %s: %w", s, err)
		}
		if pass {
			return t, nil
		}
	}
	return nil, nil
}

func (t *Transition) targetID() StateID {
	if t.Target == nil {
		return t.Source.ID
	}
	return t.Target.ID
}

func (t *Transition) evaluateGuard(ctx context.Context, evt *Event, sourceID StateID, targetID StateID) (bool, error) {
	if t.Guard != nil {
		return t.Guard(ctx, evt, sourceID, targetID)
	}
	return true, nil
}

func (t *Transition) evaluateAction(ctx context.Context, evt *Event, sourceID StateID, targetID StateID) error {
	if t.Action != nil {
		return t.Action(ctx, evt, sourceID, targetID)
	}
	return nil
}

// doTransition runs exit, transition and entry actions and returns the state
// the machine ends up in.
func (t *Transition) doTransition(ctx context.Context, evt *Event) (*State, error) {
	// Internal transition: action only.
	if t.Target == nil {
		if err := t.evaluateAction(ctx, evt, t.Source.ID, t.Source.ID); err != nil {
			return t.Source, err
		}
		return t.Source, nil
	}

	if err := t.Source.exitState(ctx, evt, t.Source.ID, t.Target.ID); err != nil {
		return t.Source, err
	}

	if err := t.evaluateAction(ctx, evt, t.Source.ID, t.Target.ID); err != nil {
		// Rewind to previous state.
		if err := t.Source.enterState(ctx, nil, t.Source.ID, t.Target.ID); err != nil {
			return t.Source, err
		}
		return t.Source, nil
	}

	if err := t.Target.enterState(ctx, evt, t.Source.ID, t.Target.ID); err != nil {
		return t.Source, err
	}

	return t.Target, nil
}
