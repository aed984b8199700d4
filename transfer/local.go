package transfer

import (
	"context"
	"fmt"

	"github.com/moyoez/upconfig/backend"
	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/types"
)

const (
	MessageTemplateAdded   = "template added"
	MessageTemplateUpdated = "template updated"
	MessageTemplateDeleted = "template deleted"
)

// LocalGateway runs commands directly against an in-process authority.
type LocalGateway struct {
	authority *backend.Authority
}

func NewLocalGateway(a *backend.Authority) *LocalGateway {
	return &LocalGateway{authority: a}
}

func (g *LocalGateway) LoadConfig(ctx context.Context) (*types.ConfigRoot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.authority.Config(), nil
}

func (g *LocalGateway) SaveConfig(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.authority.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func (g *LocalGateway) AddUserTemplate(ctx context.Context, uid uint64, name string, tpl types.TemplateConfig) (*types.TemplateCommandResponse, error) {
	return g.putTemplate(ctx, uid, name, tpl, MessageTemplateAdded)
}

func (g *LocalGateway) UpdateUserTemplate(ctx context.Context, uid uint64, name string, tpl types.TemplateConfig) (*types.TemplateCommandResponse, error) {
	return g.putTemplate(ctx, uid, name, tpl, MessageTemplateUpdated)
}

func (g *LocalGateway) putTemplate(ctx context.Context, uid uint64, name string, tpl types.TemplateConfig, okMessage string) (*types.TemplateCommandResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored, err := g.authority.AddUserTemplate(uid, name, tpl)
	if err != nil {
		return &types.TemplateCommandResponse{Success: false, Message: err.Error()}, nil
	}
	tool.DefaultLogger.Infof("%s: %s (uid %d)", okMessage, name, uid)
	return &types.TemplateCommandResponse{Success: true, Message: okMessage, Template: &stored}, nil
}

func (g *LocalGateway) DeleteUserTemplate(ctx context.Context, uid uint64, name string) (*types.TemplateCommandResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := g.authority.DeleteUserTemplate(uid, name); err != nil {
		return &types.TemplateCommandResponse{Success: false, Message: err.Error()}, nil
	}
	tool.DefaultLogger.Infof("%s: %s (uid %d)", MessageTemplateDeleted, name, uid)
	return &types.TemplateCommandResponse{Success: true, Message: MessageTemplateDeleted}, nil
}

func (g *LocalGateway) SaveUserConfig(ctx context.Context, req types.SaveUserConfigRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.authority.SaveUserConfig(req)
}

func (g *LocalGateway) SaveGlobalConfig(ctx context.Context, req types.SaveGlobalConfigRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.authority.SaveGlobalConfig(req.Settings())
	return nil
}
