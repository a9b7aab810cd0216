package game

import "github.com/lox/truckdealer/internal/deck"

// ActionType names an action on the wire and in logs.
type ActionType string

const (
	ActionStartGame         ActionType = "START_GAME"
	ActionConfirmDealerPeek ActionType = "CONFIRM_DEALER_PEEK"
	ActionSubmitGuess       ActionType = "SUBMIT_GUESS"
	ActionAckPrompt         ActionType = "ACK_PROMPT"
)

// String returns the string representation of the action type
func (t ActionType) String() string {
	return string(t)
}

// Action is one of StartGame, ConfirmDealerPeek, SubmitGuess or AckPrompt.
type Action interface {
	Type() ActionType
	isAction()
}

// StartGame creates a new game. Optional fields are nil/empty when unset.
type StartGame struct {
	Players     []Player
	LeaderID    string
	Config      *ConfigOverrides
	Seed        *int64
	DealerIndex *int
}

// ConfirmDealerPeek moves from dealerPeek to guess.
type ConfirmDealerPeek struct{}

// SubmitGuess guesses the rank of the peeked card.
type SubmitGuess struct {
	Guess deck.Rank
}

// AckPrompt acknowledges the prompt at the head of the queue.
type AckPrompt struct{}

func (StartGame) Type() ActionType         { return ActionStartGame }
func (ConfirmDealerPeek) Type() ActionType { return ActionConfirmDealerPeek }
func (SubmitGuess) Type() ActionType       { return ActionSubmitGuess }
func (AckPrompt) Type() ActionType         { return ActionAckPrompt }

func (StartGame) isAction()         {}
func (ConfirmDealerPeek) isAction() {}
func (SubmitGuess) isAction()       {}
func (AckPrompt) isAction()         {}
