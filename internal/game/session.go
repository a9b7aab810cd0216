package game

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Observer is notified after every successful transition. prev is nil for the
// transition that started the game.
type Observer interface {
	ObserveTransition(prev *State, action Action, next *State)
}

// GameEndObserver is an optional Observer extension notified when a live game
// is discarded.
type GameEndObserver interface {
	ObserveGameEnd(final *State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(prev *State, action Action, next *State)

// ObserveTransition calls f.
func (f ObserverFunc) ObserveTransition(prev *State, action Action, next *State) {
	f(prev, action, next)
}

// Session owns the live state for one device and serializes actions against
// it. It is the wiring point between the reducer and collaborators such as
// the leaderboard recorder.
type Session struct {
	mu        sync.Mutex
	reducer   *Reducer
	logger    *log.Logger
	state     *State
	observers []Observer
}

// NewSession creates a session with no game in progress.
func NewSession(reducer *Reducer, logger *log.Logger, observers ...Observer) *Session {
	if reducer == nil {
		reducer = defaultReducer
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		reducer:   reducer,
		logger:    logger.WithPrefix("session"),
		observers: observers,
	}
}

// Dispatch reduces action against the live state. Observers run synchronously
// after the new state is installed, in registration order.
func (s *Session) Dispatch(action Action) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	res, err := s.reducer.Reduce(prev, action)
	if err != nil {
		s.logger.Warn("action rejected", "action", actionName(action), "error", err)
		return Result{}, fmt.Errorf("dispatch %s: %w", actionName(action), err)
	}
	s.state = res.State

	if res.State != prev {
		for _, o := range s.observers {
			o.ObserveTransition(prev, action, res.State)
		}
	}
	return res, nil
}

// State returns the live state, or nil when no game is running.
func (s *Session) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// End discards the live game, notifying GameEndObservers. It returns the
// final state, or nil if no game was running.
func (s *Session) End() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.state
	if final == nil {
		return nil
	}
	s.state = nil

	for _, o := range s.observers {
		if eo, ok := o.(GameEndObserver); ok {
			eo.ObserveGameEnd(final)
		}
	}
	s.logger.Info("game ended", "turns", final.Turn)
	return final
}

func actionName(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.Type().String()
}
