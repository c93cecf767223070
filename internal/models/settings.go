package models

import "time"

// Settings holds per-installation user preferences. Stored as a single
// versioned document; the stored shape is accepted as-is on load.
type Settings struct {
	Currency            string    `json:"currency"`
	RefreshInterval     int       `json:"refresh_interval"`     // milliseconds, UI polling hint
	AlertCheckInterval  int       `json:"alert_check_interval"` // milliseconds, UI polling hint
	EnableNotifications bool      `json:"enable_notifications"`
	EnableSounds        bool      `json:"enable_sounds"`
	CompactMode         bool      `json:"compact_mode"`
	DefaultChartRange   string    `json:"default_chart_range"`
	Version             int       `json:"version"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultSettings returns the initial settings document.
func DefaultSettings() *Settings {
	return &Settings{
		Currency:            "usd",
		RefreshInterval:     30000,
		AlertCheckInterval:  60000,
		EnableNotifications: true,
		EnableSounds:        false,
		CompactMode:         false,
		DefaultChartRange:   "1h",
		Version:             1,
	}
}
