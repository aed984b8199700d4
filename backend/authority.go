// Package backend owns the persisted configuration tree and applies the
// commands the command gateway forwards to it.
package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/types"
)

var (
	ErrUserNotFound     = errors.New("user config not found")
	ErrTemplateNotFound = errors.New("template not found")
)

// Authority is the single owner of the configuration tree.
type Authority struct {
	mu      sync.Mutex
	path    string
	root    *types.ConfigRoot
	onLimit func(maxCurr uint32)
}

// New wraps root, or the default tree when root is nil. An empty path keeps
// the tree in memory only.
func New(root *types.ConfigRoot, path string) *Authority {
	if root == nil {
		root = types.DefaultConfigRoot()
	}
	root.Normalize()
	return &Authority{path: path, root: root}
}

// Open reads the tree stored at path, starting from defaults when the file
// does not exist yet.
func Open(path string) (*Authority, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			tool.DefaultLogger.Infof("Config file %s not found, starting from defaults", path)
			return New(nil, path), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	root := types.DefaultConfigRoot()
	if err := sonic.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	tool.DefaultLogger.Infof("Loaded config for %d users from %s", len(root.Config), path)
	return New(root, path), nil
}

// OnMaxConcurrentChanged registers fn to run whenever the global settings are
// saved, receiving the new upload concurrency limit.
func (a *Authority) OnMaxConcurrentChanged(fn func(maxCurr uint32)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLimit = fn
}

// Config returns a copy of the current tree.
func (a *Authority) Config() *types.ConfigRoot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.root.Clone()
}

// Save writes the tree to disk as indented JSON.
func (a *Authority) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.path == "" {
		return nil
	}
	data, err := sonic.ConfigStd.MarshalIndent(a.root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	tool.DefaultLogger.Debugf("Config saved to %s (%d bytes)", a.path, len(data))
	return nil
}

// SaveUserConfig overwrites the scalar settings of one user.
func (a *Authority) SaveUserConfig(req types.SaveUserConfigRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	uc := a.root.User(req.UID)
	if uc == nil {
		return fmt.Errorf("uid %d: %w", req.UID, ErrUserNotFound)
	}
	tool.DefaultLogger.Infof("UID %d settings: line=%s, proxy=%s, limit=%d, watermark=%d, auto_edit=%d",
		req.UID, optional(req.Line), optional(req.Proxy), req.Limit, req.Watermark, req.AutoEdit)
	req.Apply(uc)
	return nil
}

// SaveGlobalConfig overwrites the global settings. A blank translation
// prompt falls back to the default prompt.
func (a *Authority) SaveGlobalConfig(g types.GlobalSettings) {
	a.mu.Lock()
	tool.DefaultLogger.Infof("Global settings: max_curr=%d, auto_start=%t, auto_upload=%t, log_level=%s",
		g.MaxCurr, g.AutoStart, g.AutoUpload, g.LogLevel)
	if strings.TrimSpace(g.TranslationPrompt) == "" {
		g.TranslationPrompt = types.DefaultTranslationPrompt
	}
	a.root.GlobalSettings = g
	hook := a.onLimit
	a.mu.Unlock()

	if hook != nil {
		hook(g.MaxCurr)
	}
}

// AddUserTemplate stores tpl under name, replacing any template of the same
// name, and returns the stored record.
func (a *Authority) AddUserTemplate(uid uint64, name string, tpl types.TemplateConfig) (types.TemplateConfig, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	uc := a.root.User(uid)
	if uc == nil {
		return types.TemplateConfig{}, fmt.Errorf("uid %d: %w", uid, ErrUserNotFound)
	}
	if tpl.Videos == nil {
		tpl.Videos = []types.VideoInfo{}
	}
	if old, ok := uc.Templates.Get(name); ok {
		for _, ch := range types.DiffTemplates(old, tpl) {
			tool.DefaultLogger.Debugf("Template %q field %s: %s -> %s", name, ch.Field, ch.Old, ch.New)
		}
	}
	uc.Templates.Set(name, tpl)
	stored, _ := uc.Templates.Get(name)
	return stored, nil
}

// DeleteUserTemplate removes a template and returns it.
func (a *Authority) DeleteUserTemplate(uid uint64, name string) (types.TemplateConfig, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	uc := a.root.User(uid)
	if uc == nil {
		return types.TemplateConfig{}, fmt.Errorf("uid %d: %w", uid, ErrUserNotFound)
	}
	old, ok := uc.Templates.Get(name)
	if !ok {
		return types.TemplateConfig{}, fmt.Errorf("%q: %w", name, ErrTemplateNotFound)
	}
	uc.Templates.Delete(name)
	return old, nil
}

// NewUserConfig creates an empty settings block for a freshly logged in user,
// replacing any previous block for uid.
func (a *Authority) NewUserConfig(uid uint64, name string, cookie []byte, proxy *string) {
	a.AddUserConfig(types.NewUserConfig(uid, name, cookie, proxy))
}

// AddUserConfig inserts or replaces the settings block keyed by its uid.
func (a *Authority) AddUserConfig(uc *types.UserConfig) {
	if uc == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.root.Config[uc.User.UID] = uc.Clone()
}

// RemoveUserConfig drops the settings block of uid.
func (a *Authority) RemoveUserConfig(uid uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.root.Config[uid]; !ok {
		return fmt.Errorf("uid %d: %w", uid, ErrUserNotFound)
	}
	delete(a.root.Config, uid)
	return nil
}

func optional(s *string) string {
	if s == nil {
		return "<none>"
	}
	return *s
}
