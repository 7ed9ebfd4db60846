package model

// AdhanOption is one selectable call-to-prayer sound. The "silent" option
// has no audio resource at all.
type AdhanOption struct {
	Value                 string `json:"value"`
	Label                 string `json:"label"`
	PreviewSource         string `json:"preview_source,omitempty"`
	NotificationSoundFile string `json:"notification_sound_file,omitempty"`
}

// Playable reports whether the option has a preview resource to load.
func (o AdhanOption) Playable() bool {
	return o.Value != "silent" && o.PreviewSource != ""
}

// PreviewState is the preview session state. At most one session exists
// process-wide and it holds at most one loaded resource.
type PreviewState string

const (
	PreviewIdle    PreviewState = "idle"
	PreviewLoading PreviewState = "loading"
	PreviewPlaying PreviewState = "playing"
)
