package calcx

import (
	"fmt"
	"strings"
)

// MachineBuilder provides a fluent API for constructing state machines using string-based state names
// instead of manual integer-based State struct creation.
type MachineBuilder struct {
	nextID   StateID
	nameToID map[string]StateID
	idToName map[StateID]string // For debugging/reverse lookup
	states   map[StateID]*State
	order    []StateID
	initial  string
	pending  []pendingTransition
}

// StateBuilder provides fluent methods for configuring individual states.
type StateBuilder struct {
	b     *MachineBuilder
	state *State
	name  string
}

// pendingTransition is resolved against the registered states at Build time,
// so transitions may target states declared later.
type pendingTransition struct {
	source *State
	event  EventID
	target string // "" --> internal transition
	guard  Guard
	action Action
}

// NewMachineBuilder creates a new builder whose machine starts in initialStateName.
func NewMachineBuilder(initialStateName string) *MachineBuilder {
	return &MachineBuilder{
		nextID:   1,
		nameToID: make(map[string]StateID),
		idToName: make(map[StateID]string),
		states:   make(map[StateID]*State),
		initial:  initialStateName,
	}
}

// State creates or retrieves a state by name.
func (b *MachineBuilder) State(name string) *StateBuilder {
	id := b.assignID(name)
	state := b.states[id]
	if state == nil {
		state = &State{ID: id, Name: name}
		b.states[id] = state
		b.order = append(b.order, id)
	}
	return &StateBuilder{b: b, state: state, name: name}
}

// EventID returns the ID for an event name, assigning one if needed.
// Events share the ID space with states under an "event:" namespace.
func (b *MachineBuilder) EventID(name string) EventID {
	return EventID(b.assignID("event:" + name))
}

// Build validates the state machine configuration and constructs the Machine.
// Returns an error if the configuration is invalid.
func (b *MachineBuilder) Build(opts ...Option) (*Machine, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	for _, p := range b.pending {
		t := &Transition{
			Event:  Event{ID: p.event},
			Source: p.source,
			Guard:  p.guard,
			Action: p.action,
		}
		if p.target != "" {
			t.Target = b.states[b.nameToID[p.target]]
		}
		p.source.Transitions = append(p.source.Transitions, t)
	}
	b.pending = nil

	states := make([]*State, 0, len(b.order))
	for _, id := range b.order {
		s := b.states[id]
		s.Initial = b.idToName[id] == b.initial
		states = append(states, s)
	}
	return NewMachine(states, opts...)
}

// GetID returns the assigned StateID for a given state name.
// Returns 0 if the name hasn't been registered.
func (b *MachineBuilder) GetID(name string) StateID {
	return b.nameToID[name]
}

// GetName returns the name for a given StateID.
// Returns empty string if the ID doesn't exist.
func (b *MachineBuilder) GetName(id StateID) string {
	return b.idToName[id]
}

// EventName returns the event name for an EventID, or "" if unknown.
func (b *MachineBuilder) EventName(id EventID) string {
	name, ok := strings.CutPrefix(b.idToName[StateID(id)], "event:")
	if !ok {
		return ""
	}
	return name
}

// assignID returns the existing ID for a name, or creates a new sequential ID.
// This ensures deterministic ID assignment.
func (b *MachineBuilder) assignID(name string) StateID {
	if id, exists := b.nameToID[name]; exists {
		return id
	}

	id := b.nextID
	b.nextID++
	b.nameToID[name] = id
	b.idToName[id] = name
	return id
}

// validate checks that the state machine configuration is valid.
func (b *MachineBuilder) validate() error {
	if len(b.states) == 0 {
		return ErrNoStates
	}
	if id, ok := b.nameToID[b.initial]; !ok || b.states[id] == nil {
		return fmt.Errorf("initial state %q is not declared", b.initial)
	}
	for _, p := range b.pending {
		if p.target == "" {
			continue
		}
		if id, ok := b.nameToID[p.target]; !ok || b.states[id] == nil {
			return fmt.Errorf("state %s has transition to unknown target state %q", p.source.Name, p.target)
		}
	}
	return nil
}

// StateBuilder fluent methods

// Final marks this state as a final state. Run returns once a final state is entered.
func (sb *StateBuilder) Final() *StateBuilder {
	sb.state.Final = true
	return sb
}

// Entry sets the entry action for this state.
// The action will be executed when entering this state.
func (sb *StateBuilder) Entry(action Action) *StateBuilder {
	sb.state.EntryAction = action
	return sb
}

// Exit sets the exit action for this state.
// The action will be executed when exiting this state.
func (sb *StateBuilder) Exit(action Action) *StateBuilder {
	sb.state.ExitAction = action
	return sb
}

// Activity sets the work performed while this state is active.
func (sb *StateBuilder) Activity(a Activity) *StateBuilder {
	sb.state.Activity = a
	return sb
}

// On adds a transition from this state to the target state when the given event occurs.
// Transitions for the same event are tried in the order they were added.
// guard and action may be nil.
func (sb *StateBuilder) On(eventName string, targetName string, guard Guard, action Action) *StateBuilder {
	sb.b.pending = append(sb.b.pending, pendingTransition{
		source: sb.state,
		event:  sb.b.EventID(eventName),
		target: targetName,
		guard:  guard,
		action: action,
	})
	return sb
}

// OnInternal adds an internal transition that doesn't change state.
// The transition action executes but no exit/entry actions are triggered.
func (sb *StateBuilder) OnInternal(eventName string, guard Guard, action Action) *StateBuilder {
	return sb.On(eventName, "", guard, action)
}
