package game

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks structurally invalid input. No state is produced.
	ErrValidation = errors.New("validation error")

	// ErrInvalidPlayers is returned when START_GAME carries a bad player list.
	ErrInvalidPlayers = fmt.Errorf("%w: invalid players", ErrValidation)

	// ErrSequence is returned for any action other than START_GAME when no
	// game exists.
	ErrSequence = errors.New("sequence error")

	// ErrInvariantViolation indicates an internal bug, never a user mistake.
	ErrInvariantViolation = errors.New("invariant violation")
)
