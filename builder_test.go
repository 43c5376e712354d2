package calcx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/comalice/calcx"
)

func TestBuilderTrafficLight(t *testing.T) {
	b := NewMachineBuilder("green")

	b.State("green").On("timer", "yellow", nil, nil)
	b.State("yellow").On("timer", "red", nil, nil)
	b.State("red").On("timer", "green", nil, nil)

	machine, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, machine.Start(ctx))
	assert.Equal(t, b.GetID("green"), machine.Current().ID, "should start in green")

	timer := Event{ID: b.EventID("timer")}
	for _, want := range []string{"yellow", "red", "green"} {
		require.NoError(t, machine.Send(ctx, timer))
		assert.Equal(t, want, machine.Current().Name)
	}
}

func TestBuilderForwardReference(t *testing.T) {
	b := NewMachineBuilder("start")
	b.State("start").On("go", "later", nil, nil)
	b.State("later").Final()

	machine, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, machine.Start(ctx))
	require.NoError(t, machine.Send(ctx, Event{ID: b.EventID("go")}))
	assert.True(t, machine.Done())
}

func TestBuilderFinalStateRun(t *testing.T) {
	b := NewMachineBuilder("working")
	done := b.EventID("done")

	b.State("working").
		Activity(func(ctx context.Context) (Event, error) {
			return Event{ID: done}, nil
		}).
		On("done", "finished", nil, nil)
	b.State("finished").Final()

	machine, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, machine.Run(context.Background()))
	assert.Equal(t, b.GetID("finished"), machine.Current().ID, "should be in finished (final) state")
}

func TestBuilderActions(t *testing.T) {
	b := NewMachineBuilder("idle")

	var entryCount, exitCount, transitionCount int

	entryAction := func(ctx context.Context, evt *Event, from StateID, to StateID) error {
		entryCount++
		return nil
	}
	exitAction := func(ctx context.Context, evt *Event, from StateID, to StateID) error {
		exitCount++
		return nil
	}
	transitionAction := func(ctx context.Context, evt *Event, from StateID, to StateID) error {
		transitionCount++
		return nil
	}

	b.State("idle").
		Entry(entryAction).
		Exit(exitAction).
		On("start", "active", nil, transitionAction)

	b.State("active").
		Entry(entryAction).
		On("stop", "idle", nil, nil)

	machine, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, machine.Start(ctx))

	// Entry action should have fired for idle
	assert.Equal(t, 1, entryCount)

	require.NoError(t, machine.Send(ctx, Event{ID: b.EventID("start")}))

	// Should have exit(idle) + transition + entry(active)
	assert.Equal(t, 1, exitCount)
	assert.Equal(t, 1, transitionCount)
	assert.Equal(t, 2, entryCount)
}

func TestBuilderGuards(t *testing.T) {
	b := NewMachineBuilder("start")

	allowTransition := true
	guard := func(ctx context.Context, evt *Event, from StateID, to StateID) (bool, error) {
		return allowTransition, nil
	}

	b.State("start").On("next", "end", guard, nil)
	b.State("end")

	machine, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, machine.Start(ctx))
	next := Event{ID: b.EventID("next")}

	// Guard blocks transition
	allowTransition = false
	require.NoError(t, machine.Send(ctx, next))
	assert.Equal(t, "start", machine.Current().Name)

	// Guard allows transition
	allowTransition = true
	require.NoError(t, machine.Send(ctx, next))
	assert.Equal(t, "end", machine.Current().Name)
}

func TestBuilderGuardFallthrough(t *testing.T) {
	b := NewMachineBuilder("ask")
	never := func(ctx context.Context, evt *Event, from StateID, to StateID) (bool, error) {
		return false, nil
	}

	b.State("ask").
		On("answer", "special", never, nil).
		On("answer", "plain", nil, nil)
	b.State("special")
	b.State("plain")

	machine, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, machine.Start(ctx))
	require.NoError(t, machine.Send(ctx, Event{ID: b.EventID("answer")}))
	assert.Equal(t, "plain", machine.Current().Name)
}

func TestBuilderInternalTransition(t *testing.T) {
	b := NewMachineBuilder("running")

	var actionCount, entryCount, exitCount int
	internalAction := func(ctx context.Context, evt *Event, from StateID, to StateID) error {
		actionCount++
		return nil
	}

	b.State("running").
		Entry(func(ctx context.Context, evt *Event, from StateID, to StateID) error {
			entryCount++
			return nil
		}).
		Exit(func(ctx context.Context, evt *Event, from StateID, to StateID) error {
			exitCount++
			return nil
		}).
		OnInternal("update", nil, internalAction)

	machine, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, machine.Start(ctx))
	assert.Equal(t, 1, entryCount)

	require.NoError(t, machine.Send(ctx, Event{ID: b.EventID("update")}))

	// Internal action should fire, but not entry/exit
	assert.Equal(t, 1, actionCount)
	assert.Equal(t, 0, exitCount)
	assert.Equal(t, 1, entryCount)
	assert.Equal(t, b.GetID("running"), machine.Current().ID)
}

func TestBuilderDeterministicIDs(t *testing.T) {
	build := func() *MachineBuilder {
		b := NewMachineBuilder("idle")
		b.State("idle").On("start", "active", nil, nil)
		b.State("active").On("stop", "idle", nil, nil)
		return b
	}
	b1, b2 := build(), build()

	assert.Equal(t, b1.GetID("idle"), b2.GetID("idle"))
	assert.Equal(t, b1.GetID("active"), b2.GetID("active"))
	assert.Equal(t, b1.EventID("start"), b2.EventID("start"))
	assert.Equal(t, b1.EventID("stop"), b1.EventID("stop"), "EventID is stable")
}

func TestBuilderGetNameReverseLookup(t *testing.T) {
	b := NewMachineBuilder("state1")
	b.State("state1")
	b.State("state2")

	assert.Equal(t, "state1", b.GetName(b.GetID("state1")))
	assert.Equal(t, "state2", b.GetName(b.GetID("state2")))
	assert.Equal(t, "", b.GetName(999))
	assert.Equal(t, StateID(0), b.GetID("missing"))

	ev := b.EventID("ping")
	assert.Equal(t, "ping", b.EventName(ev))
	assert.Equal(t, "", b.EventName(EventID(b.GetID("state1"))), "state IDs are not events")
}

func TestBuilderValidation(t *testing.T) {
	_, err := NewMachineBuilder("idle").Build()
	assert.ErrorIs(t, err, ErrNoStates)

	b := NewMachineBuilder("parent")
	b.State("other")
	_, err = b.Build()
	assert.ErrorContains(t, err, `initial state "parent" is not declared`)

	b = NewMachineBuilder("a")
	b.State("a").On("go", "nowhere", nil, nil)
	_, err = b.Build()
	assert.ErrorContains(t, err, `unknown target state "nowhere"`)
}

func TestBuilderTransitionHook(t *testing.T) {
	b := NewMachineBuilder("a")
	b.State("a").On("go", "b", nil, nil)
	b.State("b")

	var seen []string
	machine, err := b.Build(WithTransitionHook(func(from, to *State, evt Event) {
		seen = append(seen, from.Name+" -"+b.EventName(evt.ID)+"-> "+to.Name)
	}))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, machine.Start(ctx))
	require.NoError(t, machine.Send(ctx, Event{ID: b.EventID("go")}))
	assert.Equal(t, []string{"a -go-> b"}, seen)
}
