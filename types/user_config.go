package types

import (
	"bytes"
	"encoding/json"
	"maps"
)

// DefaultLogLevel is the backend log level used when none is configured.
const DefaultLogLevel = "info"

// DefaultTranslationPrompt is applied whenever the stored prompt is blank.
const DefaultTranslationPrompt = "You are a professional video title translator. Translate the input title into concise, natural Simplified Chinese. Keep product names, proper nouns, and abbreviations accurate. Output only the translated title without explanation or quotes."

// UserInfo is the login record kept next to each user's settings.
type UserInfo struct {
	UID    uint64          `json:"uid"`
	Name   string          `json:"name"`
	Cookie json.RawMessage `json:"cookie,omitempty"` // opaque login info, never inspected here
}

// GlobalSettings holds the application wide scalar settings.
type GlobalSettings struct {
	MaxCurr           uint32 `json:"max_curr"`
	AutoUpload        bool   `json:"auto_upload"`
	AutoStart         bool   `json:"auto_start"`
	LogLevel          string `json:"log_level"`
	TranslationAPIURL string `json:"translation_api_url"`
	TranslationAPIKey string `json:"translation_api_key"`
	TranslationModel  string `json:"translation_model"`
	TranslationPrompt string `json:"translation_prompt"`
	TranslationAuto   bool   `json:"translation_auto"`
}

// UserConfig is the per-uid settings block, including the user's templates.
type UserConfig struct {
	User      UserInfo    `json:"user"`
	Line      *string     `json:"line,omitempty"`
	Proxy     *string     `json:"proxy,omitempty"`
	Limit     uint32      `json:"limit"`
	Watermark uint8       `json:"watermark"`
	AutoEdit  uint8       `json:"auto_edit"`
	Templates TemplateSet `json:"templates"`
}

// ConfigRoot is the full configuration tree mirrored from the backend.
type ConfigRoot struct {
	GlobalSettings
	Config map[uint64]*UserConfig `json:"config"`
}

// DefaultConfigRoot returns the tree a fresh backend starts from.
func DefaultConfigRoot() *ConfigRoot {
	return &ConfigRoot{
		GlobalSettings: GlobalSettings{
			MaxCurr:           1,
			AutoStart:         true,
			AutoUpload:        true,
			LogLevel:          DefaultLogLevel,
			TranslationPrompt: DefaultTranslationPrompt,
		},
		Config: map[uint64]*UserConfig{},
	}
}

// NewUserConfig creates an empty settings block for a freshly logged in user.
func NewUserConfig(uid uint64, name string, cookie json.RawMessage, proxy *string) *UserConfig {
	return &UserConfig{
		User:  UserInfo{UID: uid, Name: name, Cookie: cloneRaw(cookie)},
		Proxy: cloneStringPtr(proxy),
	}
}

// User returns the settings block of uid, or nil.
func (c *ConfigRoot) User(uid uint64) *UserConfig {
	if c == nil || c.Config == nil {
		return nil
	}
	return c.Config[uid]
}

// Clone returns a structurally independent copy of the tree.
func (c *ConfigRoot) Clone() *ConfigRoot {
	if c == nil {
		return nil
	}
	cp := &ConfigRoot{GlobalSettings: c.GlobalSettings}
	if c.Config != nil {
		cp.Config = make(map[uint64]*UserConfig, len(c.Config))
		for uid, uc := range c.Config {
			cp.Config[uid] = uc.Clone()
		}
	}
	return cp
}

// Clone returns a deep copy of the user block.
func (u *UserConfig) Clone() *UserConfig {
	if u == nil {
		return nil
	}
	cp := *u
	cp.User.Cookie = cloneRaw(u.User.Cookie)
	cp.Line = cloneStringPtr(u.Line)
	cp.Proxy = cloneStringPtr(u.Proxy)
	cp.Templates = u.Templates.Clone()
	return &cp
}

// Equal reports whether both trees hold the same settings and templates,
// comparing template order as well.
func (c *ConfigRoot) Equal(other *ConfigRoot) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.GlobalSettings != other.GlobalSettings || len(c.Config) != len(other.Config) {
		return false
	}
	for uid, uc := range c.Config {
		if !uc.Equal(other.Config[uid]) {
			return false
		}
	}
	return true
}

// Equal compares two user blocks field by field.
func (u *UserConfig) Equal(other *UserConfig) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.User.UID == other.User.UID &&
		u.User.Name == other.User.Name &&
		bytes.Equal(u.User.Cookie, other.User.Cookie) &&
		equalStringPtr(u.Line, other.Line) &&
		equalStringPtr(u.Proxy, other.Proxy) &&
		u.Limit == other.Limit &&
		u.Watermark == other.Watermark &&
		u.AutoEdit == other.AutoEdit &&
		u.Templates.Equal(&other.Templates)
}

// Normalize fills the zero values the backend treats as defaults.
func (c *ConfigRoot) Normalize() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.TranslationPrompt == "" {
		c.TranslationPrompt = DefaultTranslationPrompt
	}
	if c.Config == nil {
		c.Config = map[uint64]*UserConfig{}
	}
	// keyed uid wins over a stale embedded one
	maps.DeleteFunc(c.Config, func(_ uint64, uc *UserConfig) bool { return uc == nil })
	for uid, uc := range c.Config {
		uc.User.UID = uid
	}
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUint32Ptr(v *uint32) *uint32 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneUint64Ptr(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
