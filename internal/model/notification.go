package model

import "time"

// NotificationChannel selects the delivery channel on the device.
type NotificationChannel string

const (
	// ChannelDefault is the regular prayer-time channel.
	ChannelDefault NotificationChannel = "prayer"
	// ChannelUrgent is the high-importance channel that bypasses
	// do-not-disturb; used for Fajr and the Ramadan windows.
	ChannelUrgent NotificationChannel = "prayer_urgent"
)

// TriggerKind discriminates Trigger.
type TriggerKind string

const (
	TriggerDailyRepeat TriggerKind = "daily_repeat"
	TriggerOneOff      TriggerKind = "one_off"
)

// Trigger is either a daily repeat at a wall-clock time or a one-off
// instant. Hour/Minute are set for DailyRepeat, At for OneOff.
type Trigger struct {
	Kind   TriggerKind `json:"kind"`
	Hour   int         `json:"hour,omitempty"`
	Minute int         `json:"minute,omitempty"`
	At     time.Time   `json:"at,omitempty"`
}

// DailyRepeat builds a repeating trigger at the given wall-clock time.
func DailyRepeat(hour, minute int) Trigger {
	return Trigger{Kind: TriggerDailyRepeat, Hour: hour, Minute: minute}
}

// OneOff builds a single-shot trigger at the given instant.
func OneOff(at time.Time) Trigger {
	return Trigger{Kind: TriggerOneOff, At: at}
}

// NotificationRequest is one idempotent local-notification arm request.
// Identifier is deterministic per (kind, prayer, day); re-issuing the same
// identifier must replace the pending trigger, never duplicate it.
type NotificationRequest struct {
	Identifier string              `json:"identifier"`
	Title      string              `json:"title"`
	Body       string              `json:"body"`
	Sound      string              `json:"sound,omitempty"`
	Channel    NotificationChannel `json:"channel"`
	Trigger    Trigger             `json:"trigger"`
}
