package packets

import "github.com/crescent-hq/minaret/internal/model"

type UpdateSettingsRequest struct {
	City                 string                `json:"city"`
	Latitude             float64               `json:"latitude" binding:"min=-90,max=90"`
	Longitude            float64               `json:"longitude" binding:"min=-180,max=180"`
	Method               int                   `json:"method"`
	School               int                   `json:"school" binding:"min=0,max=1"`
	AdhanSound           string                `json:"adhan_sound"`
	NotificationsEnabled bool                  `json:"notifications_enabled"`
	ReminderOffsets      model.ReminderOffsets `json:"reminder_offsets"`
	RamadanAlertsEnabled bool                  `json:"ramadan_alerts_enabled"`
	SehriOffsetMin       int                   `json:"sehri_offset_min" binding:"min=0,max=120"`
	IftarOffsetMin       int                   `json:"iftar_offset_min" binding:"min=0,max=60"`
}

type PreviewRequest struct {
	Value string `json:"value" binding:"required"`
}
