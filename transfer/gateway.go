// Package transfer carries config commands from the store to the backend,
// either in process or over the command HTTP API.
package transfer

import (
	"context"

	"github.com/moyoez/upconfig/types"
)

// Gateway is the command channel to the backend that owns the configuration.
// Template commands report rejection through the response's Success flag;
// a non-nil error means the command could not be delivered or decoded.
type Gateway interface {
	LoadConfig(ctx context.Context) (*types.ConfigRoot, error)
	SaveConfig(ctx context.Context) error
	AddUserTemplate(ctx context.Context, uid uint64, name string, tpl types.TemplateConfig) (*types.TemplateCommandResponse, error)
	UpdateUserTemplate(ctx context.Context, uid uint64, name string, tpl types.TemplateConfig) (*types.TemplateCommandResponse, error)
	DeleteUserTemplate(ctx context.Context, uid uint64, name string) (*types.TemplateCommandResponse, error)
	SaveUserConfig(ctx context.Context, req types.SaveUserConfigRequest) error
	SaveGlobalConfig(ctx context.Context, req types.SaveGlobalConfigRequest) error
}
