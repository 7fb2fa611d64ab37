package shared

import (
	"fmt"
	"sort"
)

// StateMachine is a transition table keyed by (state, event). Each entity
// declares its table once and routes every status change through Transition,
// so legality checks live in one place.
type StateMachine[S ~string, E ~string] struct {
	name        string
	transitions map[S]map[E]S
}

// Transition is a single row of a StateMachine table
type Transition[S ~string, E ~string] struct {
	From  S
	Event E
	To    S
}

// NewStateMachine builds a machine from its rows. Duplicate (from, event)
// pairs panic: a table is static configuration.
func NewStateMachine[S ~string, E ~string](name string, rows ...Transition[S, E]) *StateMachine[S, E] {
	m := &StateMachine[S, E]{name: name, transitions: make(map[S]map[E]S)}
	for _, r := range rows {
		events, ok := m.transitions[r.From]
		if !ok {
			events = make(map[E]S)
			m.transitions[r.From] = events
		}
		if _, dup := events[r.Event]; dup {
			panic(fmt.Sprintf("%s: duplicate transition %s --%s-->", name, r.From, r.Event))
		}
		events[r.Event] = r.To
	}
	return m
}

// Transition returns the next state for event applied in current, or an
// INVALID_TRANSITION error when the pair is not in the table.
func (m *StateMachine[S, E]) Transition(current S, event E) (S, error) {
	if next, ok := m.transitions[current][event]; ok {
		return next, nil
	}
	return current, NewInvalidStateError(CodeInvalidTransition,
		fmt.Sprintf("%s: cannot %s when %s", m.name, event, current))
}

// Can reports whether event is legal in current
func (m *StateMachine[S, E]) Can(current S, event E) bool {
	_, ok := m.transitions[current][event]
	return ok
}

// IsTerminal reports whether no event leaves state
func (m *StateMachine[S, E]) IsTerminal(state S) bool {
	return len(m.transitions[state]) == 0
}

// Events lists the events accepted in state, sorted
func (m *StateMachine[S, E]) Events(state S) []E {
	out := make([]E, 0, len(m.transitions[state]))
	for e := range m.transitions[state] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
