// Package phase gates the four-step homeowner flow (Gather, Compare, Decide,
// Verify). State is a plain value; Complete and Navigate return the next
// state instead of mutating shared globals.
package phase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Phase int

const (
	Gather Phase = iota + 1
	Compare
	Decide
	Verify
)

var All = []Phase{Gather, Compare, Decide, Verify}

func (p Phase) Valid() bool {
	return p >= Gather && p <= Verify
}

func (p Phase) String() string {
	switch p {
	case Gather:
		return "gather"
	case Compare:
		return "compare"
	case Decide:
		return "decide"
	case Verify:
		return "verify"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// Parse accepts a phase number ("2") or name ("compare").
func Parse(s string) (Phase, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if p := Phase(n); p.Valid() {
			return p, nil
		}
		return 0, fmt.Errorf("%w: %s", ErrUnknownPhase, s)
	}
	for _, p := range All {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownPhase, s)
}

type Status string

const (
	Locked    Status = "locked"
	Active    Status = "active"
	Completed Status = "completed"
)

var (
	ErrUnknownPhase = errors.New("unknown phase")
	ErrPhaseLocked  = errors.New("phase is locked")
)

// State is what gets cached per user. ProjectID ties the cached copy to the
// project it was computed for.
type State struct {
	ProjectID    string           `json:"project_id"`
	CurrentPhase Phase            `json:"current_phase"`
	Phases       map[Phase]Status `json:"phases"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Initial has Gather active and everything else locked.
func Initial(projectID string) State {
	return State{
		ProjectID:    projectID,
		CurrentPhase: Gather,
		Phases: map[Phase]Status{
			Gather:  Active,
			Compare: Locked,
			Decide:  Locked,
			Verify:  Locked,
		},
	}
}

func (s State) StatusOf(p Phase) Status {
	if st, ok := s.Phases[p]; ok {
		return st
	}
	return Locked
}

func (s State) clone() State {
	out := s
	out.Phases = make(map[Phase]Status, len(All))
	for _, p := range All {
		out.Phases[p] = s.StatusOf(p)
	}
	return out
}

// Complete marks p completed and unlocks what follows it. Finishing Gather
// opens Compare, Decide and Verify at once.
func (s State) Complete(p Phase) (State, error) {
	if !p.Valid() {
		return s, fmt.Errorf("%w: %d", ErrUnknownPhase, p)
	}
	if s.StatusOf(p) == Locked {
		return s, fmt.Errorf("%w: %s", ErrPhaseLocked, p)
	}

	next := s.clone()
	next.Phases[p] = Completed

	unlock := []Phase{p + 1}
	if p == Gather {
		unlock = []Phase{Compare, Decide, Verify}
	}
	for _, u := range unlock {
		if u.Valid() && next.Phases[u] == Locked {
			next.Phases[u] = Active
		}
	}

	if next.CurrentPhase == p && p < Verify {
		next.CurrentPhase = p + 1
	}
	return next, nil
}

// Navigate moves to any phase that is not locked.
func (s State) Navigate(p Phase) (State, error) {
	if !p.Valid() {
		return s, fmt.Errorf("%w: %d", ErrUnknownPhase, p)
	}
	if s.StatusOf(p) == Locked {
		return s, fmt.Errorf("%w: %s", ErrPhaseLocked, p)
	}
	next := s.clone()
	next.CurrentPhase = p
	return next, nil
}

// Facts are the persisted values a state is rebuilt from.
type Facts struct {
	BidCount                int
	RequirementsCompletedAt *time.Time
}

// Derive rebuilds state from persisted data: two or more bids plus completed
// requirements means Gather is done.
func Derive(projectID string, f Facts) State {
	st := Initial(projectID)
	if f.BidCount >= 2 && f.RequirementsCompletedAt != nil {
		st, _ = st.Complete(Gather)
	}
	return st
}
