package types

// UserSettingsPatch is a partial update of one user's settings (all fields optional).
// A nil field is left untouched. An empty Line or Proxy clears the option.
type UserSettingsPatch struct {
	Line      *string `json:"line"`
	Proxy     *string `json:"proxy"`
	Limit     *uint32 `json:"limit"`
	Watermark *uint8  `json:"watermark"`
	AutoEdit  *uint8  `json:"auto_edit"`
}

// ApplyTo writes the present fields onto u.
func (p UserSettingsPatch) ApplyTo(u *UserConfig) {
	if p.Line != nil {
		u.Line = optionalString(*p.Line)
	}
	if p.Proxy != nil {
		u.Proxy = optionalString(*p.Proxy)
	}
	if p.Limit != nil {
		u.Limit = *p.Limit
	}
	if p.Watermark != nil {
		u.Watermark = *p.Watermark
	}
	if p.AutoEdit != nil {
		u.AutoEdit = *p.AutoEdit
	}
}

// Empty reports whether the patch carries no field.
func (p UserSettingsPatch) Empty() bool {
	return p.Line == nil && p.Proxy == nil && p.Limit == nil && p.Watermark == nil && p.AutoEdit == nil
}

// GlobalSettingsPatch is a partial update of the global settings (all fields optional).
type GlobalSettingsPatch struct {
	MaxCurr           *uint32 `json:"max_curr"`
	AutoUpload        *bool   `json:"auto_upload"`
	AutoStart         *bool   `json:"auto_start"`
	LogLevel          *string `json:"log_level"`
	TranslationAPIURL *string `json:"translation_api_url"`
	TranslationAPIKey *string `json:"translation_api_key"`
	TranslationModel  *string `json:"translation_model"`
	TranslationPrompt *string `json:"translation_prompt"`
	TranslationAuto   *bool   `json:"translation_auto"`
}

// ApplyTo merges the present fields into g.
func (p GlobalSettingsPatch) ApplyTo(g *GlobalSettings) {
	if p.MaxCurr != nil {
		g.MaxCurr = *p.MaxCurr
	}
	if p.AutoUpload != nil {
		g.AutoUpload = *p.AutoUpload
	}
	if p.AutoStart != nil {
		g.AutoStart = *p.AutoStart
	}
	if p.LogLevel != nil {
		g.LogLevel = *p.LogLevel
	}
	if p.TranslationAPIURL != nil {
		g.TranslationAPIURL = *p.TranslationAPIURL
	}
	if p.TranslationAPIKey != nil {
		g.TranslationAPIKey = *p.TranslationAPIKey
	}
	if p.TranslationModel != nil {
		g.TranslationModel = *p.TranslationModel
	}
	if p.TranslationPrompt != nil {
		g.TranslationPrompt = *p.TranslationPrompt
	}
	if p.TranslationAuto != nil {
		g.TranslationAuto = *p.TranslationAuto
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
