package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Trigger is a tagged union: Type selects the config shape, Config holds
// the raw variant payload. Cross-type fields never leak because each
// variant decodes with unknown fields disallowed.
type Trigger struct {
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Trigger type tags.
const (
	TriggerManual        = "manual"
	TriggerCommand       = "command"
	TriggerChannelPoint  = "channel-point-reward"
	TriggerSubscription  = "subscription"
	TriggerGiftSub       = "gift-sub"
	TriggerCheer         = "cheer"
	TriggerTimeDailyAt   = "time.dailyAt"
	TriggerTimeWeeklyAt  = "time.weeklyAt"
	TriggerTimeMonthlyOn = "time.monthlyOn"
)

// ManualConfig is the (empty) config for manually fired spawns.
type ManualConfig struct{}

// CommandConfig fires on a chat command.
type CommandConfig struct {
	Command       string   `json:"command"`
	Aliases       []string `json:"aliases,omitempty"`
	CaseSensitive bool     `json:"caseSensitive,omitempty"`
}

// ChannelPointConfig fires on a channel point reward redemption.
type ChannelPointConfig struct {
	RewardIdentifier string `json:"rewardIdentifier"`
	UseViewerInput   bool   `json:"useViewerInput,omitempty"`
}

// SubscriptionConfig fires on a subscription event.
type SubscriptionConfig struct {
	Tier   string `json:"tier,omitempty"`
	Months int    `json:"months,omitempty"`
}

// GiftSubConfig fires on gifted subscriptions.
type GiftSubConfig struct {
	MinCount int    `json:"minCount,omitempty"`
	Tier     string `json:"tier,omitempty"`
}

// CheerConfig fires on a cheer of at least MinBits.
type CheerConfig struct {
	MinBits int `json:"minBits"`
}

// DailyAtConfig fires every day at a local wall-clock time ("HH:MM").
type DailyAtConfig struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone,omitempty"`
}

// WeeklyAtConfig fires weekly on DayOfWeek (0 = Sunday) at Time.
type WeeklyAtConfig struct {
	DayOfWeek int    `json:"dayOfWeek"`
	Time      string `json:"time"`
	Timezone  string `json:"timezone,omitempty"`
}

// MonthlyOnConfig fires monthly on DayOfMonth (1..31) at Time.
type MonthlyOnConfig struct {
	DayOfMonth int    `json:"dayOfMonth"`
	Time       string `json:"time"`
	Timezone   string `json:"timezone,omitempty"`
}

// ManualTrigger returns a trigger that only fires on demand.
func ManualTrigger() Trigger {
	return Trigger{Type: TriggerManual, Config: json.RawMessage(`{}`)}
}

// NewTrigger builds a trigger from a typed config value.
func NewTrigger(typ string, config any) (Trigger, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return Trigger{}, fmt.Errorf("encoding trigger config: %w", err)
	}
	t := Trigger{Type: typ, Config: raw}
	if err := t.Validate(); err != nil {
		return Trigger{}, err
	}
	return t, nil
}

// Validate checks that the config payload matches the trigger type. The
// decode is strict: unknown fields (including fields belonging to another
// variant) are rejected.
func (t Trigger) Validate() error {
	var target any
	switch t.Type {
	case TriggerManual:
		target = &ManualConfig{}
	case TriggerCommand:
		target = &CommandConfig{}
	case TriggerChannelPoint:
		target = &ChannelPointConfig{}
	case TriggerSubscription:
		target = &SubscriptionConfig{}
	case TriggerGiftSub:
		target = &GiftSubConfig{}
	case TriggerCheer:
		target = &CheerConfig{}
	case TriggerTimeDailyAt:
		target = &DailyAtConfig{}
	case TriggerTimeWeeklyAt:
		target = &WeeklyAtConfig{}
	case TriggerTimeMonthlyOn:
		target = &MonthlyOnConfig{}
	default:
		return fmt.Errorf("unknown trigger type: %q", t.Type)
	}

	raw := t.Config
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("trigger config does not match type %q: %w", t.Type, err)
	}

	switch cfg := target.(type) {
	case *CommandConfig:
		if cfg.Command == "" {
			return fmt.Errorf("command trigger requires a command")
		}
	case *ChannelPointConfig:
		if cfg.RewardIdentifier == "" {
			return fmt.Errorf("channel point trigger requires a reward identifier")
		}
	case *CheerConfig:
		if cfg.MinBits <= 0 {
			return fmt.Errorf("cheer trigger requires minBits > 0")
		}
	case *DailyAtConfig:
		if err := validateClockTime(cfg.Time); err != nil {
			return err
		}
	case *WeeklyAtConfig:
		if cfg.DayOfWeek < 0 || cfg.DayOfWeek > 6 {
			return fmt.Errorf("weekly trigger dayOfWeek must be 0..6, got %d", cfg.DayOfWeek)
		}
		if err := validateClockTime(cfg.Time); err != nil {
			return err
		}
	case *MonthlyOnConfig:
		if cfg.DayOfMonth < 1 || cfg.DayOfMonth > 31 {
			return fmt.Errorf("monthly trigger dayOfMonth must be 1..31, got %d", cfg.DayOfMonth)
		}
		if err := validateClockTime(cfg.Time); err != nil {
			return err
		}
	}
	return nil
}

// validateClockTime checks an "HH:MM" wall-clock string.
func validateClockTime(s string) error {
	if len(s) != 5 || s[2] != ':' {
		return fmt.Errorf("time must be HH:MM, got %q", s)
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	for _, c := range []byte{s[0], s[1], s[3], s[4]} {
		if c < '0' || c > '9' {
			return fmt.Errorf("time must be HH:MM, got %q", s)
		}
	}
	if hh > 23 || mm > 59 {
		return fmt.Errorf("time out of range: %q", s)
	}
	return nil
}
