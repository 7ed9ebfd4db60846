package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReminderOffsets maps a prayer to its pre-prayer reminder offset in
// minutes. Zero or a missing entry disables the reminder for that prayer.
// Stored as jsonb.
type ReminderOffsets map[PrayerName]int

func (r ReminderOffsets) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

func (r *ReminderOffsets) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = ReminderOffsets{}
		return nil
	}
	return fmt.Errorf("unsupported reminder_offsets type %T", src)
}

// Settings is the per-user configuration row. Loaded once per session and
// passed into component calls; never an ambient global.
type Settings struct {
	UserID               int             `db:"user_id" json:"user_id"`
	City                 string          `db:"city" json:"city"`
	Latitude             float64         `db:"latitude" json:"latitude"`
	Longitude            float64         `db:"longitude" json:"longitude"`
	Method               int             `db:"method" json:"method"`
	School               int             `db:"school" json:"school"`
	AdhanSound           string          `db:"adhan_sound" json:"adhan_sound"`
	NotificationsEnabled bool            `db:"notifications_enabled" json:"notifications_enabled"`
	ReminderOffsets      ReminderOffsets `db:"reminder_offsets" json:"reminder_offsets"`
	RamadanAlertsEnabled bool            `db:"ramadan_alerts_enabled" json:"ramadan_alerts_enabled"`
	SehriOffsetMin       int             `db:"sehri_offset_min" json:"sehri_offset_min"`
	IftarOffsetMin       int             `db:"iftar_offset_min" json:"iftar_offset_min"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// DefaultSettings are the values a fresh user starts with.
func DefaultSettings(userID int) Settings {
	return Settings{
		UserID:               userID,
		Method:               2, // ISNA
		School:               0, // Shafi
		AdhanSound:           "makkah",
		NotificationsEnabled: true,
		ReminderOffsets:      ReminderOffsets{},
		RamadanAlertsEnabled: true,
		SehriOffsetMin:       10,
		IftarOffsetMin:       0,
	}
}
