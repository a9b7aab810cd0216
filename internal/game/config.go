package game

import "fmt"

// DefaultPunishmentText is used when no punishment text is configured.
const DefaultPunishmentText = "Group punishment (configurable)"

// Config holds the house rules for a game.
type Config struct {
	PunishmentText                    string `json:"punishmentText"`
	WrongStreakToChangeDealer         int    `json:"wrongStreakToChangeDealer"`
	CorrectStreakForShot              int    `json:"correctStreakForShot"`
	CorrectStreakForPunishment        int    `json:"correctStreakForPunishment"`
	ResetCorrectStreakAfterPunishment bool   `json:"resetCorrectStreakAfterPunishment"`
}

// DefaultConfig returns the standard house rules.
func DefaultConfig() Config {
	return Config{
		PunishmentText:                    DefaultPunishmentText,
		WrongStreakToChangeDealer:         3,
		CorrectStreakForShot:              5,
		CorrectStreakForPunishment:        7,
		ResetCorrectStreakAfterPunishment: true,
	}
}

// ConfigOverrides is a partial Config; nil fields keep the base value.
type ConfigOverrides struct {
	PunishmentText                    *string
	WrongStreakToChangeDealer         *int
	CorrectStreakForShot              *int
	CorrectStreakForPunishment        *int
	ResetCorrectStreakAfterPunishment *bool
}

// Apply returns c with every non-nil override applied.
func (c Config) Apply(o *ConfigOverrides) Config {
	if o == nil {
		return c
	}
	if o.PunishmentText != nil {
		c.PunishmentText = *o.PunishmentText
	}
	if o.WrongStreakToChangeDealer != nil {
		c.WrongStreakToChangeDealer = *o.WrongStreakToChangeDealer
	}
	if o.CorrectStreakForShot != nil {
		c.CorrectStreakForShot = *o.CorrectStreakForShot
	}
	if o.CorrectStreakForPunishment != nil {
		c.CorrectStreakForPunishment = *o.CorrectStreakForPunishment
	}
	if o.ResetCorrectStreakAfterPunishment != nil {
		c.ResetCorrectStreakAfterPunishment = *o.ResetCorrectStreakAfterPunishment
	}
	return c
}

// Overrides returns c expressed as a full set of overrides.
func (c Config) Overrides() *ConfigOverrides {
	return &ConfigOverrides{
		PunishmentText:                    &c.PunishmentText,
		WrongStreakToChangeDealer:         &c.WrongStreakToChangeDealer,
		CorrectStreakForShot:              &c.CorrectStreakForShot,
		CorrectStreakForPunishment:        &c.CorrectStreakForPunishment,
		ResetCorrectStreakAfterPunishment: &c.ResetCorrectStreakAfterPunishment,
	}
}

// Validate checks that every streak threshold is positive.
func (c Config) Validate() error {
	if c.WrongStreakToChangeDealer < 1 {
		return fmt.Errorf("%w: wrong streak to change dealer must be at least 1", ErrValidation)
	}
	if c.CorrectStreakForShot < 1 {
		return fmt.Errorf("%w: correct streak for shot must be at least 1", ErrValidation)
	}
	if c.CorrectStreakForPunishment < 1 {
		return fmt.Errorf("%w: correct streak for punishment must be at least 1", ErrValidation)
	}
	return nil
}

func (c Config) punishmentText() string {
	if c.PunishmentText == "" {
		return "Punishment"
	}
	return c.PunishmentText
}
