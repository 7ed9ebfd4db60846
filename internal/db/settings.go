package db

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/model"
)

// GetSettings fetches the user's settings row, falling back to defaults
// when none exists yet.
func GetSettings(userID int) (model.Settings, error) {
	var s model.Settings
	const q = `
	SELECT user_id, city, latitude, longitude, method, school, adhan_sound,
	       notifications_enabled, reminder_offsets, ramadan_alerts_enabled,
	       sehri_offset_min, iftar_offset_min, updated_at
	  FROM settings
	 WHERE user_id = $1;`
	err := DB.Get(&s, q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(userID), nil
	}
	if err != nil {
		log.Error().Err(err).Msg("GetSettings failed")
		return model.Settings{}, err
	}
	return s, nil
}

// SaveSettings upserts the user's settings row.
func SaveSettings(s model.Settings) error {
	const q = `
	INSERT INTO settings
	(user_id, city, latitude, longitude, method, school, adhan_sound,
	 notifications_enabled, reminder_offsets, ramadan_alerts_enabled,
	 sehri_offset_min, iftar_offset_min, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
	ON CONFLICT (user_id) DO UPDATE SET
	 city = EXCLUDED.city,
	 latitude = EXCLUDED.latitude,
	 longitude = EXCLUDED.longitude,
	 method = EXCLUDED.method,
	 school = EXCLUDED.school,
	 adhan_sound = EXCLUDED.adhan_sound,
	 notifications_enabled = EXCLUDED.notifications_enabled,
	 reminder_offsets = EXCLUDED.reminder_offsets,
	 ramadan_alerts_enabled = EXCLUDED.ramadan_alerts_enabled,
	 sehri_offset_min = EXCLUDED.sehri_offset_min,
	 iftar_offset_min = EXCLUDED.iftar_offset_min,
	 updated_at = now();`
	_, err := DB.Exec(q,
		s.UserID, s.City, s.Latitude, s.Longitude, s.Method, s.School, s.AdhanSound,
		s.NotificationsEnabled, s.ReminderOffsets, s.RamadanAlertsEnabled,
		s.SehriOffsetMin, s.IftarOffsetMin,
	)
	if err != nil {
		log.Error().Err(err).Msg("SaveSettings failed")
	}
	return err
}
