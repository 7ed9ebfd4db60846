package adhan

import "github.com/crescent-hq/minaret/internal/model"

// catalog is the fixed set of selectable adhan sounds. Preview sources are
// asset keys resolved through the sound store; "silent" has no resource.
var catalog = []model.AdhanOption{
	{Value: "makkah", Label: "Makkah", PreviewSource: "adhan_makkah.mp3", NotificationSoundFile: "adhan_makkah_short"},
	{Value: "madinah", Label: "Madinah", PreviewSource: "adhan_madinah.mp3", NotificationSoundFile: "adhan_madinah_short"},
	{Value: "alaqsa", Label: "Al-Aqsa", PreviewSource: "adhan_alaqsa.mp3", NotificationSoundFile: "adhan_alaqsa_short"},
	{Value: "egypt", Label: "Egypt", PreviewSource: "adhan_egypt.mp3", NotificationSoundFile: "adhan_egypt_short"},
	{Value: "silent", Label: "Silent"},
}

// Options returns the selectable adhan sounds in display order.
func Options() []model.AdhanOption {
	out := make([]model.AdhanOption, len(catalog))
	copy(out, catalog)
	return out
}

// OptionByValue looks up an option by its stored value.
func OptionByValue(value string) (model.AdhanOption, bool) {
	for _, o := range catalog {
		if o.Value == value {
			return o, true
		}
	}
	return model.AdhanOption{}, false
}

// NotificationSound returns the notification sound file for a selected
// value, or empty for silent/unknown selections.
func NotificationSound(value string) string {
	o, ok := OptionByValue(value)
	if !ok {
		return ""
	}
	return o.NotificationSoundFile
}
