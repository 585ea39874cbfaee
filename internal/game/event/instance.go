package event

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/heartbound/internal/game/condition"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// State is the lifecycle state of one offered event.
type State int

const (
	StateOffered State = iota
	StateChoicePending
	StateResolved
	// StateDismissed closes the event without applying any choice.
	StateDismissed
)

// String returns a lowercase state label.
func (s State) String() string {
	switch s {
	case StateOffered:
		return "offered"
	case StateChoicePending:
		return "choice-pending"
	case StateResolved:
		return "resolved"
	case StateDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotPending is returned by Choose before Present or after the instance closed.
	ErrNotPending = errors.New("event is not awaiting a choice")
	// ErrClosed is returned when acting on a resolved or dismissed instance.
	ErrClosed = errors.New("event is closed")
	// ErrInvalidChoice is returned for an out-of-range choice index.
	ErrInvalidChoice = errors.New("invalid choice")
)

// Option is a choice as presented to the player.
type Option struct {
	Index   int
	Text    string
	Enabled bool
	// Reason explains why a disabled option cannot be chosen.
	Reason string
}

// Outcome is the result of choosing an option.
type Outcome struct {
	// Player is the next player state. It equals the input when Blocked.
	Player player.Player
	Report effect.Report
	// Blocked holds the failed gate when the choice's condition did not pass.
	Blocked *condition.Result
	// Complete is true when the event is a once-event and must be added to the completed set.
	Complete bool
}

// Instance tracks one offering of an event through
// offered -> choice-pending -> resolved, or -> dismissed.
//
// An Instance is not safe for concurrent use.
type Instance struct {
	Event *Event
	state State
}

// NewInstance creates an instance of e in the offered state.
func NewInstance(e *Event) *Instance {
	return &Instance{Event: e, state: StateOffered}
}

// State returns the current state.
func (in *Instance) State() State { return in.state }

// Present evaluates every choice's condition against p and moves the
// instance to choice-pending. Calling it again while pending re-evaluates.
//
// Postcondition: len(options) == len(Event.Choices); p is not modified.
func (in *Instance) Present(p player.Player, env condition.Env) ([]Option, error) {
	switch in.state {
	case StateOffered, StateChoicePending:
	default:
		return nil, fmt.Errorf("%w: %s", ErrClosed, in.state)
	}
	opts := make([]Option, len(in.Event.Choices))
	for i, c := range in.Event.Choices {
		res := condition.Explain(c.Condition, p, env)
		opts[i] = Option{Index: i, Text: c.Text, Enabled: res.Passed(), Reason: res.Message()}
	}
	in.state = StateChoicePending
	return opts, nil
}

// Choose resolves the instance with choice idx.
//
// A failed condition is a gate failure: Outcome.Blocked is set, nothing is
// applied and the instance stays pending. An effect error, such as
// effect.ErrInsufficientFunds, is returned and also leaves it pending.
//
// Precondition: Present has been called.
// Postcondition: on success the state is resolved and Outcome.Player is the
// effect applied to p; p itself is never modified.
func (in *Instance) Choose(idx int, p player.Player, env condition.Env) (Outcome, error) {
	if in.state != StateChoicePending {
		return Outcome{Player: p}, fmt.Errorf("%w: %s", ErrNotPending, in.state)
	}
	if idx < 0 || idx >= len(in.Event.Choices) {
		return Outcome{Player: p}, fmt.Errorf("%w: %d of %d", ErrInvalidChoice, idx+1, len(in.Event.Choices))
	}
	c := in.Event.Choices[idx]
	if res := condition.Explain(c.Condition, p, env); !res.Passed() {
		return Outcome{Player: p, Blocked: &res}, nil
	}
	next, rep, err := effect.Apply(c.Effect, p)
	if err != nil {
		return Outcome{Player: p}, fmt.Errorf("event %q choice %d: %w", in.Event.ID, idx+1, err)
	}
	in.state = StateResolved
	return Outcome{Player: next, Report: rep, Complete: in.Event.Trigger.Once}, nil
}

// Dismiss closes the instance without applying any choice. A dismissed
// once-event is not completed and may be offered again.
//
// Postcondition: state is dismissed; returns ErrClosed if already closed.
func (in *Instance) Dismiss() error {
	switch in.state {
	case StateOffered, StateChoicePending:
		in.state = StateDismissed
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrClosed, in.state)
	}
}
