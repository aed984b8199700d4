package notify

import (
	"fmt"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/types"
)

// MaxNotifyPayload is the largest notification accepted for broadcast.
const MaxNotifyPayload = 32 * 1024 // 32KB

// Hub receives every notification that passes SendNotification.
type Hub interface {
	Broadcast(payload []byte)
}

var (
	UseNotify = true
	hubMu     sync.RWMutex
	hub       Hub
)

// SetUseNotify sets whether to use notify
func SetUseNotify(use bool) {
	UseNotify = use
}

// SetHub installs the websocket hub. nil disables broadcasting.
func SetHub(h Hub) {
	hubMu.Lock()
	defer hubMu.Unlock()
	hub = h
}

// NotifyWSEnabled reports whether notifications are delivered over the websocket.
func NotifyWSEnabled() bool {
	hubMu.RLock()
	defer hubMu.RUnlock()
	return UseNotify && hub != nil
}

// SendNotification serializes notification and broadcasts it to the hub.
func SendNotification(notification *types.Notification) error {
	if !UseNotify || notification == nil {
		return nil
	}
	hubMu.RLock()
	h := hub
	hubMu.RUnlock()
	if h == nil {
		return nil
	}
	if notification.ID == "" {
		notification.ID = tool.GenerateRandomUUID()
	}
	payload, err := sonic.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to serialize notification data: %v", err)
	}
	if len(payload) > MaxNotifyPayload {
		return fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), MaxNotifyPayload)
	}
	h.Broadcast(payload)
	tool.DefaultLogger.Debugf("[Notify] Broadcast %s - %s", notification.Type, notification.Title)
	return nil
}

// NewConfigNotification builds the notification for a committed config command.
func NewConfigNotification(eventType string, data map[string]any) *types.Notification {
	n := &types.Notification{
		Type: eventType,
		Data: data,
	}
	switch eventType {
	case types.NotifyTypeConfigLoaded:
		n.Title = "Config Loaded"
		n.Message = "Configuration reloaded from backend"
	case types.NotifyTypeConfigSaved:
		n.Title = "Config Saved"
		n.Message = "Configuration written to disk"
	case types.NotifyTypePersistFailed:
		n.Title = "Save Failed"
		n.Message = fmt.Sprintf("Configuration could not be saved: %v", data["error"])
	case types.NotifyTypeTemplateAdded:
		n.Title = "Template Added"
		n.Message = fmt.Sprintf("Template %v added for %v", data["templateName"], data["uid"])
	case types.NotifyTypeTemplateUpdated:
		n.Title = "Template Updated"
		n.Message = fmt.Sprintf("Template %v updated for %v", data["templateName"], data["uid"])
	case types.NotifyTypeTemplateRemoved:
		n.Title = "Template Removed"
		n.Message = fmt.Sprintf("Template %v removed for %v", data["templateName"], data["uid"])
	case types.NotifyTypeUserSettingsUpdated:
		n.Title = "User Settings Updated"
		n.Message = fmt.Sprintf("Settings updated for %v", data["uid"])
	case types.NotifyTypeGlobalSettingsUpdated:
		n.Title = "Settings Updated"
		n.Message = "Global settings updated"
	default:
		n.Title = "Config Event"
		n.Message = fmt.Sprintf("Config event: %s", eventType)
	}
	return n
}

// SendConfigNotification broadcasts a config event; failures are only logged.
func SendConfigNotification(eventType string, data map[string]any) {
	if err := SendNotification(NewConfigNotification(eventType, data)); err != nil {
		tool.DefaultLogger.Debugf("Failed to send config notification: %v", err)
	}
}
