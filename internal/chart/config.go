// Package chart loads declarative state charts and binds them to code.
//
// A chart names its states, the events each state reacts to and the guarded
// targets of those events. Behaviour (activities, entry actions, guards) is
// referenced by name and supplied at Bind time, so the shape of a loop can be
// read and reviewed without the code that drives it.
package chart

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines a complete flat state chart.
type Config struct {
	ID      string        `json:"id" yaml:"id"`
	Initial string        `json:"initial" yaml:"initial"`
	States  []StateConfig `json:"states" yaml:"states"`
}

// StateConfig defines one state.
type StateConfig struct {
	ID    string                        `json:"id" yaml:"id"`
	Final bool                          `json:"final,omitempty" yaml:"final,omitempty"`
	Entry []string                      `json:"entry,omitempty" yaml:"entry,omitempty"`
	On    map[string][]TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
}

// TransitionConfig defines a transition taken when the guard (if any) holds.
// Transitions for the same event are tried in document order.
type TransitionConfig struct {
	Target string `json:"target" yaml:"target"`
	Guard  string `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// Parse decodes a YAML chart and validates it.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the chart as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Validate validates the chart:
// - Non-empty ID and Initial
// - Unique, non-empty state IDs; Initial declared
// - Final states have no transitions
// - All transition targets exist
// - No orphaned states (all reachable from Initial)
func (c *Config) Validate() error {
	if c.ID == "" {
		return errors.New("chart ID is required")
	}
	if c.Initial == "" {
		return errors.New("initial state ID is required")
	}
	if len(c.States) == 0 {
		return errors.New("states are required and cannot be empty")
	}

	index := make(map[string]*StateConfig, len(c.States))
	for i := range c.States {
		s := &c.States[i]
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("state %d: ID is required", i)
		}
		if _, dup := index[s.ID]; dup {
			return fmt.Errorf("duplicate state %q", s.ID)
		}
		index[s.ID] = s
	}
	if _, ok := index[c.Initial]; !ok {
		return fmt.Errorf("initial state %q not found in states", c.Initial)
	}

	for _, s := range c.States {
		if s.Final && len(s.On) > 0 {
			return fmt.Errorf("final state %q cannot have transitions", s.ID)
		}
		for event, transitions := range s.On {
			if strings.TrimSpace(event) == "" {
				return fmt.Errorf("empty event name in state %q", s.ID)
			}
			if len(transitions) == 0 {
				return fmt.Errorf("event %q in state %q has no transitions", event, s.ID)
			}
			for i, t := range transitions {
				if _, ok := index[t.Target]; !ok {
					return fmt.Errorf("invalid transition target %q (state %q, event %q, transition %d)", t.Target, s.ID, event, i)
				}
			}
		}
	}

	visited := make(map[string]bool, len(index))
	markReachable(c.Initial, index, visited)
	for _, s := range c.States {
		if !visited[s.ID] {
			return fmt.Errorf("orphaned state %q (not reachable from initial %q)", s.ID, c.Initial)
		}
	}
	return nil
}

// FindState returns the state with the given ID.
func (c *Config) FindState(id string) (*StateConfig, error) {
	for i := range c.States {
		if c.States[i].ID == id {
			return &c.States[i], nil
		}
	}
	return nil, fmt.Errorf("state %q not found", id)
}

func markReachable(id string, index map[string]*StateConfig, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	for _, transitions := range index[id].On {
		for _, t := range transitions {
			markReachable(t.Target, index, visited)
		}
	}
}
