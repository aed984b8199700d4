package types

// Notification represents a notification message structure
type Notification struct {
	ID      string         `json:"id,omitempty"`      // Event id, set by the emitter
	Type    string         `json:"type,omitempty"`    // Notification type, e.g. "template_added", "config_saved", etc.
	Title   string         `json:"title,omitempty"`   // Notification title
	Message string         `json:"message,omitempty"` // Notification message/content
	Data    map[string]any `json:"data,omitempty"`    // Additional data fields
}

// Notification types emitted by the store and the command API.
const (
	NotifyTypeConfigLoaded          = "config_loaded"
	NotifyTypeConfigSaved           = "config_saved"
	NotifyTypePersistFailed         = "persist_failed"
	NotifyTypeTemplateAdded         = "template_added"
	NotifyTypeTemplateUpdated       = "template_updated"
	NotifyTypeTemplateRemoved       = "template_removed"
	NotifyTypeUserSettingsUpdated   = "user_settings_updated"
	NotifyTypeGlobalSettingsUpdated = "global_settings_updated"
)
