package store

import (
	"context"
	"errors"

	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/transfer"
	"github.com/moyoez/upconfig/types"
)

const (
	opAddTemplate       = "add template"
	opRemoveTemplate    = "remove template"
	opUpdateTemplate    = "update template"
	opDuplicateTemplate = "duplicate template"
	opUserSettings      = "update user settings"
	opGlobalSettings    = "update global settings"
)

// AddTemplate creates a template for uid. A nil cfg starts from the default
// template. The template's watermark always takes the user's current default.
// The cache is loaded first if it never was.
func (s *Store) AddTemplate(ctx context.Context, uid uint64, name string, cfg *types.TemplateConfig) error {
	s.op.Lock()
	defer s.op.Unlock()
	return s.addTemplate(ctx, opAddTemplate, uid, name, cfg)
}

func (s *Store) addTemplate(ctx context.Context, op string, uid uint64, name string, cfg *types.TemplateConfig) error {
	if !s.Loaded() {
		if err := s.load(ctx); err != nil {
			return err
		}
	}

	s.mu.RLock()
	uc := s.cache.User(uid)
	var (
		watermark uint8
		exists    bool
	)
	if uc != nil {
		watermark = uc.Watermark
		exists = uc.Templates.Has(name)
	}
	s.mu.RUnlock()
	if uc == nil {
		return invalid(op, ErrUserConfigMissing)
	}
	if exists {
		return invalid(op, ErrTemplateExists)
	}

	seed := types.DefaultTemplate()
	if cfg != nil {
		seed = cfg.Clone()
	}
	seed.Watermark = watermark

	resp, err := s.gw.AddUserTemplate(ctx, uid, name, seed)
	stored, err := templateResult(op, resp, err, true)
	if err != nil {
		tool.DefaultLogger.Warnf("%s %q for %d: %v", op, name, uid, err)
		return err
	}

	s.mu.Lock()
	s.cache.User(uid).Templates.Set(name, *stored)
	s.mu.Unlock()
	s.emit(types.NotifyTypeTemplateAdded, templateEvent(uid, name))

	return s.persist(ctx)
}

// RemoveTemplate deletes a template. The cache only changes once the backend
// has confirmed the delete.
func (s *Store) RemoveTemplate(ctx context.Context, uid uint64, name string) error {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.requireTemplate(opRemoveTemplate, uid, name); err != nil {
		return err
	}

	resp, err := s.gw.DeleteUserTemplate(ctx, uid, name)
	if _, err := templateResult(opRemoveTemplate, resp, err, false); err != nil {
		tool.DefaultLogger.Warnf("%s %q for %d: %v", opRemoveTemplate, name, uid, err)
		return err
	}

	s.mu.Lock()
	s.cache.User(uid).Templates.Delete(name)
	s.mu.Unlock()
	s.emit(types.NotifyTypeTemplateRemoved, templateEvent(uid, name))

	return s.persist(ctx)
}

// UpdateTemplate replaces an existing template with the backend's stored
// version of cfg.
func (s *Store) UpdateTemplate(ctx context.Context, uid uint64, name string, cfg types.TemplateConfig) error {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.requireTemplate(opUpdateTemplate, uid, name); err != nil {
		return err
	}

	resp, err := s.gw.UpdateUserTemplate(ctx, uid, name, cfg.Clone())
	stored, err := templateResult(opUpdateTemplate, resp, err, true)
	if err != nil {
		tool.DefaultLogger.Warnf("%s %q for %d: %v", opUpdateTemplate, name, uid, err)
		return err
	}

	s.mu.Lock()
	s.cache.User(uid).Templates.Set(name, *stored)
	s.mu.Unlock()
	s.emit(types.NotifyTypeTemplateUpdated, templateEvent(uid, name))

	return s.persist(ctx)
}

// DuplicateTemplate adds dst as a draft copy of src, detached from any
// published archive.
func (s *Store) DuplicateTemplate(ctx context.Context, uid uint64, src, dst string) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.RLock()
	var (
		source types.TemplateConfig
		ok     bool
	)
	if uc := s.cache.User(uid); uc != nil {
		source, ok = uc.Templates.Get(src)
	}
	s.mu.RUnlock()
	if !ok {
		return invalid(opDuplicateTemplate, ErrSourceTemplateMissing)
	}

	draft := source.AsDraft()
	return s.addTemplate(ctx, opDuplicateTemplate, uid, dst, &draft)
}

// UpdateUserSettings applies the fields present in patch. The full resulting
// settings are sent to the backend and written to the cache once acknowledged.
func (s *Store) UpdateUserSettings(ctx context.Context, uid uint64, patch types.UserSettingsPatch) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.RLock()
	loaded := s.cache != nil
	var next *types.UserConfig
	if uc := s.cache.User(uid); uc != nil {
		next = uc.Clone()
	}
	s.mu.RUnlock()
	if !loaded {
		return invalid(opUserSettings, ErrNotLoaded)
	}
	if next == nil {
		return invalid(opUserSettings, ErrUserConfigMissing)
	}

	patch.ApplyTo(next)
	req := types.NewSaveUserConfigRequest(uid, next)
	if err := s.gw.SaveUserConfig(ctx, req); err != nil {
		tool.DefaultLogger.Warnf("%s for %d: %v", opUserSettings, uid, err)
		return remoteError(opUserSettings, err)
	}

	s.mu.Lock()
	req.Apply(s.cache.User(uid))
	s.mu.Unlock()
	s.emit(types.NotifyTypeUserSettingsUpdated, map[string]any{"uid": uid})

	return s.persist(ctx)
}

// UpdateGlobalSettings merges patch into the global settings, sending the
// full resulting set to the backend.
func (s *Store) UpdateGlobalSettings(ctx context.Context, patch types.GlobalSettingsPatch) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.RLock()
	loaded := s.cache != nil
	var next types.GlobalSettings
	if loaded {
		next = s.cache.GlobalSettings
	}
	s.mu.RUnlock()
	if !loaded {
		return invalid(opGlobalSettings, ErrNotLoaded)
	}

	patch.ApplyTo(&next)
	if err := s.gw.SaveGlobalConfig(ctx, types.NewSaveGlobalConfigRequest(next)); err != nil {
		tool.DefaultLogger.Warnf("%s: %v", opGlobalSettings, err)
		return remoteError(opGlobalSettings, err)
	}

	s.mu.Lock()
	s.cache.GlobalSettings = next
	s.mu.Unlock()
	s.emit(types.NotifyTypeGlobalSettingsUpdated, nil)

	return s.persist(ctx)
}

func (s *Store) requireTemplate(op string, uid uint64, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache == nil {
		return invalid(op, ErrNotLoaded)
	}
	uc := s.cache.User(uid)
	if uc == nil {
		return invalid(op, ErrUserConfigMissing)
	}
	if !uc.Templates.Has(name) {
		return invalid(op, ErrTemplateMissing)
	}
	return nil
}

// templateResult checks a template command reply. Add and update must carry
// the stored template.
func templateResult(op string, resp *types.TemplateCommandResponse, err error, wantTemplate bool) (*types.TemplateConfig, error) {
	if err != nil {
		return nil, remoteError(op, err)
	}
	if resp == nil {
		return nil, &RemoteMutationError{Op: op, Message: "empty response"}
	}
	if !resp.Success {
		return nil, &RemoteMutationError{Op: op, Message: resp.Message}
	}
	if wantTemplate && resp.Template == nil {
		return nil, &RemoteMutationError{Op: op, Message: "response carries no template"}
	}
	return resp.Template, nil
}

func remoteError(op string, err error) error {
	rerr := &RemoteMutationError{Op: op, Err: err}
	var cmdErr *transfer.CommandError
	if errors.As(err, &cmdErr) {
		rerr.Message = cmdErr.Message
	}
	return rerr
}

func templateEvent(uid uint64, name string) map[string]any {
	return map[string]any{"uid": uid, "templateName": name}
}
