package chart

import (
	"context"
	"fmt"
	"sort"

	"github.com/comalice/calcx"
)

// Bindings supplies the behaviour a chart refers to by name.
type Bindings struct {
	// Activities are keyed by state ID. Every non-final state needs one.
	Activities map[string]calcx.Activity
	// Entry holds entry actions referenced from StateConfig.Entry.
	Entry map[string]calcx.Action
	// Guards holds guards referenced from TransitionConfig.Guard.
	Guards map[string]calcx.Guard
}

// Chart is a bound, runnable chart.
type Chart struct {
	config  Config
	builder *calcx.MachineBuilder
	machine *calcx.Machine
}

// Bind validates cfg, resolves every named reference against b and builds the machine.
func Bind(cfg Config, b Bindings, opts ...calcx.Option) (*Chart, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mb := calcx.NewMachineBuilder(cfg.Initial)
	for _, s := range cfg.States {
		sb := mb.State(s.ID)
		if s.Final {
			sb.Final()
		} else {
			act, ok := b.Activities[s.ID]
			if !ok || act == nil {
				return nil, fmt.Errorf("state %q: no activity bound", s.ID)
			}
			sb.Activity(act)
		}

		if len(s.Entry) > 0 {
			entry, err := chainEntry(s.ID, s.Entry, b.Entry)
			if err != nil {
				return nil, err
			}
			sb.Entry(entry)
		}

		events := make([]string, 0, len(s.On))
		for event := range s.On {
			events = append(events, event)
		}
		sort.Strings(events)
		for _, event := range events {
			for _, t := range s.On[event] {
				var guard calcx.Guard
				if t.Guard != "" {
					g, ok := b.Guards[t.Guard]
					if !ok || g == nil {
						return nil, fmt.Errorf("state %q, event %q: guard %q not bound", s.ID, event, t.Guard)
					}
					guard = g
				}
				sb.On(event, t.Target, guard, nil)
			}
		}
	}

	m, err := mb.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("build chart %q: %w", cfg.ID, err)
	}
	return &Chart{config: cfg, builder: mb, machine: m}, nil
}

// chainEntry composes the named entry actions of a state in order.
func chainEntry(state string, names []string, actions map[string]calcx.Action) (calcx.Action, error) {
	chain := make([]calcx.Action, 0, len(names))
	for _, name := range names {
		a, ok := actions[name]
		if !ok || a == nil {
			return nil, fmt.Errorf("state %q: entry action %q not bound", state, name)
		}
		chain = append(chain, a)
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return func(ctx context.Context, evt *calcx.Event, from, to calcx.StateID) error {
		for _, a := range chain {
			if err := a(ctx, evt, from, to); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// Machine returns the bound machine.
func (c *Chart) Machine() *calcx.Machine {
	return c.machine
}

// Config returns the chart definition the machine was built from.
func (c *Chart) Config() Config {
	return c.config
}

// Event returns the event for name. Names the chart never mentions get a
// fresh ID that no transition handles.
func (c *Chart) Event(name string) calcx.Event {
	return calcx.Event{ID: c.builder.EventID(name)}
}

// EventName returns the name of an event ID.
func (c *Chart) EventName(id calcx.EventID) string {
	return c.builder.EventName(id)
}
