package types

// TemplateCommandResponse is the reply to add/update/delete template commands.
// Template is only set for add and update.
type TemplateCommandResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Template *TemplateConfig `json:"template,omitempty"`
}

// TemplateCommandRequest is the body of add/update template commands.
type TemplateCommandRequest struct {
	UID          uint64          `json:"uid"`
	TemplateName string          `json:"templateName"`
	Template     *TemplateConfig `json:"template,omitempty"`
}

// SaveUserConfigRequest carries the full per-user settings set.
type SaveUserConfigRequest struct {
	UID       uint64  `json:"uid"`
	Line      *string `json:"line"`
	Proxy     *string `json:"proxy"`
	Limit     uint32  `json:"limit"`
	Watermark uint8   `json:"watermark"`
	AutoEdit  uint8   `json:"autoEdit"`
}

// SaveGlobalConfigRequest carries the full global settings set.
type SaveGlobalConfigRequest struct {
	MaxCurr           uint32 `json:"maxCurr"`
	AutoStart         bool   `json:"autoStart"`
	AutoUpload        bool   `json:"autoUpload"`
	LogLevel          string `json:"logLevel"`
	TranslationAPIURL string `json:"translationApiUrl"`
	TranslationAPIKey string `json:"translationApiKey"`
	TranslationModel  string `json:"translationModel"`
	TranslationPrompt string `json:"translationPrompt"`
	TranslationAuto   bool   `json:"translationAuto"`
}

// Settings converts the request into the stored global settings shape.
func (r SaveGlobalConfigRequest) Settings() GlobalSettings {
	return GlobalSettings{
		MaxCurr:           r.MaxCurr,
		AutoStart:         r.AutoStart,
		AutoUpload:        r.AutoUpload,
		LogLevel:          r.LogLevel,
		TranslationAPIURL: r.TranslationAPIURL,
		TranslationAPIKey: r.TranslationAPIKey,
		TranslationModel:  r.TranslationModel,
		TranslationPrompt: r.TranslationPrompt,
		TranslationAuto:   r.TranslationAuto,
	}
}

// NewSaveGlobalConfigRequest builds the request from stored settings.
func NewSaveGlobalConfigRequest(g GlobalSettings) SaveGlobalConfigRequest {
	return SaveGlobalConfigRequest{
		MaxCurr:           g.MaxCurr,
		AutoStart:         g.AutoStart,
		AutoUpload:        g.AutoUpload,
		LogLevel:          g.LogLevel,
		TranslationAPIURL: g.TranslationAPIURL,
		TranslationAPIKey: g.TranslationAPIKey,
		TranslationModel:  g.TranslationModel,
		TranslationPrompt: g.TranslationPrompt,
		TranslationAuto:   g.TranslationAuto,
	}
}

// NewSaveUserConfigRequest builds the request from a user's stored settings.
func NewSaveUserConfigRequest(uid uint64, u *UserConfig) SaveUserConfigRequest {
	return SaveUserConfigRequest{
		UID:       uid,
		Line:      cloneStringPtr(u.Line),
		Proxy:     cloneStringPtr(u.Proxy),
		Limit:     u.Limit,
		Watermark: u.Watermark,
		AutoEdit:  u.AutoEdit,
	}
}

// Apply writes the request's settings onto u. Templates are left alone.
func (r SaveUserConfigRequest) Apply(u *UserConfig) {
	u.Line = cloneStringPtr(r.Line)
	u.Proxy = cloneStringPtr(r.Proxy)
	u.Limit = r.Limit
	u.Watermark = r.Watermark
	u.AutoEdit = r.AutoEdit
}
