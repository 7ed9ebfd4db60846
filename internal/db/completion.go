package db

import (
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/model"
)

// LoadCompletion fetches the per-prayer completion map for one date.
// An empty map means nothing recorded yet.
func LoadCompletion(userID int, day time.Time) (map[model.PrayerName]bool, error) {
	rows := []struct {
		Prayer string `db:"prayer"`
		Done   bool   `db:"done"`
	}{}
	const q = `
	SELECT prayer, done
	  FROM prayer_completion
	 WHERE user_id = $1 AND day = $2;`
	if err := DB.Select(&rows, q, userID, day.Format("2006-01-02")); err != nil {
		log.Error().Err(err).Msg("LoadCompletion failed")
		return nil, err
	}

	out := make(map[model.PrayerName]bool, len(rows))
	for _, r := range rows {
		out[model.PrayerName(r.Prayer)] = r.Done
	}
	return out, nil
}

// SaveCompletion upserts the whole completion map for one date in a single
// transaction.
func SaveCompletion(userID int, day time.Time, completion map[model.PrayerName]bool) error {
	tx, err := DB.Beginx()
	if err != nil {
		log.Error().Err(err).Msg("SaveCompletion begin failed")
		return err
	}
	defer tx.Rollback()

	const q = `
	INSERT INTO prayer_completion (user_id, day, prayer, done, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (user_id, day, prayer)
	DO UPDATE SET done = EXCLUDED.done, updated_at = now();`

	for prayer, done := range completion {
		if _, err := tx.Exec(q, userID, day.Format("2006-01-02"), string(prayer), done); err != nil {
			log.Error().Err(err).Str("prayer", string(prayer)).Msg("SaveCompletion upsert failed")
			return err
		}
	}
	return tx.Commit()
}
