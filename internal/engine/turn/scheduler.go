// Package turn tracks whose turn it is at the table.
package turn

import (
	"sync"

	"github.com/KirkDiggler/rpg-party/internal/entities"
	"github.com/KirkDiggler/rpg-party/internal/errors"
)

// State is the scheduler's position in its state machine
type State string

const (
	// StateIdle means no session has been started
	StateIdle State = "idle"
	// StateAwaitingHuman means the human seat is current
	StateAwaitingHuman State = "awaiting_human"
	// StateAwaitingAutonomous means a companion is current. The scheduler
	// never acts for it; something outside must submit the companion's turn.
	StateAwaitingAutonomous State = "awaiting_autonomous"
)

// Scheduler owns the turn order and the current turn index.
// Reads are safe from any goroutine.
type Scheduler struct {
	mu      sync.RWMutex
	members []entities.PartyMember
	index   int
	round   int
}

// NewScheduler returns an idle scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start seats members in the given order and gives the first seat the
// turn. The first member must be the only human.
func (s *Scheduler) Start(members []entities.PartyMember) error {
	if len(members) == 0 {
		return errors.InvalidArgument("turn order requires at least one member")
	}
	if !members[0].IsHuman() {
		return errors.InvalidArgument("the human must be first in turn order")
	}

	seen := make(map[string]bool, len(members))
	for i, m := range members {
		if m.ID == "" {
			return errors.InvalidArgumentf("member %d has no ID", i)
		}
		if seen[m.ID] {
			return errors.InvalidArgumentf("duplicate member ID %q", m.ID)
		}
		if i > 0 && m.IsHuman() {
			return errors.InvalidArgument("turn order allows a single human")
		}
		seen[m.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.members = append([]entities.PartyMember(nil), members...)
	s.index = 0
	s.round = 1
	return nil
}

// Stop returns the scheduler to idle
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members = nil
	s.index = 0
	s.round = 0
}

// State reports the current state
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case len(s.members) == 0:
		return StateIdle
	case s.members[s.index].IsHuman():
		return StateAwaitingHuman
	default:
		return StateAwaitingAutonomous
	}
}

// CurrentMember returns the member whose turn it is
func (s *Scheduler) CurrentMember() (entities.PartyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.members) == 0 {
		return entities.PartyMember{}, errors.NoActiveSession("no session is seated")
	}
	return s.members[s.index], nil
}

// Advance passes the turn to the next seat, wrapping to the first seat and
// starting a new round after the last. It returns the new current member.
func (s *Scheduler) Advance() (entities.PartyMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.members) == 0 {
		return entities.PartyMember{}, errors.NoActiveSession("cannot advance without a session")
	}

	s.index = (s.index + 1) % len(s.members)
	if s.index == 0 {
		s.round++
	}
	return s.members[s.index], nil
}

// IsHumanTurn reports whether the human seat is current
func (s *Scheduler) IsHumanTurn() bool {
	return s.State() == StateAwaitingHuman
}

// IsTurnOf reports whether memberID holds the current turn
func (s *Scheduler) IsTurnOf(memberID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.members) > 0 && s.members[s.index].ID == memberID
}

// Index returns the current turn index
func (s *Scheduler) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Round returns the current round, starting at 1. Idle schedulers report 0.
func (s *Scheduler) Round() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}
