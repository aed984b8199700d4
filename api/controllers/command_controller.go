package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upconfig/backend"
	"github.com/moyoez/upconfig/notify"
	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/transfer"
	"github.com/moyoez/upconfig/types"
)

// CommandController serves the config commands over HTTP.
type CommandController struct {
	gw transfer.Gateway
}

func NewCommandController(gw transfer.Gateway) *CommandController {
	return &CommandController{gw: gw}
}

// HandleLoadConfig returns the whole configuration tree.
// GET /api/command/v1/load_config
func (ctrl *CommandController) HandleLoadConfig(c *gin.Context) {
	cfg, err := ctrl.gw.LoadConfig(c.Request.Context())
	if err != nil {
		tool.DefaultLogger.Errorf("[Command] load_config: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("failed to load config: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(cfg))
}

// HandleSaveConfig writes the configuration to disk.
// POST /api/command/v1/save_config
func (ctrl *CommandController) HandleSaveConfig(c *gin.Context) {
	if err := ctrl.gw.SaveConfig(c.Request.Context()); err != nil {
		tool.DefaultLogger.Errorf("[Command] save_config: %v", err)
		notify.SendConfigNotification(types.NotifyTypePersistFailed, map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("failed to save config: "+err.Error()))
		return
	}
	notify.SendConfigNotification(types.NotifyTypeConfigSaved, nil)
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// HandleAddUserTemplate stores a new template.
// POST /api/command/v1/add_user_template
func (ctrl *CommandController) HandleAddUserTemplate(c *gin.Context) {
	ctrl.handlePutTemplate(c, ctrl.gw.AddUserTemplate, types.NotifyTypeTemplateAdded)
}

// HandleUpdateUserTemplate replaces a template.
// POST /api/command/v1/update_user_template
func (ctrl *CommandController) HandleUpdateUserTemplate(c *gin.Context) {
	ctrl.handlePutTemplate(c, ctrl.gw.UpdateUserTemplate, types.NotifyTypeTemplateUpdated)
}

type putTemplateFunc func(ctx context.Context, uid uint64, name string, tpl types.TemplateConfig) (*types.TemplateCommandResponse, error)

func (ctrl *CommandController) handlePutTemplate(c *gin.Context, put putTemplateFunc, eventType string) {
	var req types.TemplateCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("invalid request body: "+err.Error()))
		return
	}
	if req.TemplateName == "" || req.Template == nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("templateName and template are required"))
		return
	}
	resp, err := put(c.Request.Context(), req.UID, req.TemplateName, *req.Template)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	if resp.Success {
		notify.SendConfigNotification(eventType, map[string]any{"uid": req.UID, "templateName": req.TemplateName})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleDeleteUserTemplate removes a template.
// POST /api/command/v1/delete_user_template
func (ctrl *CommandController) HandleDeleteUserTemplate(c *gin.Context) {
	var req types.TemplateCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("invalid request body: "+err.Error()))
		return
	}
	if req.TemplateName == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("templateName is required"))
		return
	}
	resp, err := ctrl.gw.DeleteUserTemplate(c.Request.Context(), req.UID, req.TemplateName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	if resp.Success {
		notify.SendConfigNotification(types.NotifyTypeTemplateRemoved, map[string]any{"uid": req.UID, "templateName": req.TemplateName})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSaveUserConfig overwrites one user's settings.
// POST /api/command/v1/save_user_config
func (ctrl *CommandController) HandleSaveUserConfig(c *gin.Context) {
	var req types.SaveUserConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("invalid request body: "+err.Error()))
		return
	}
	if err := ctrl.gw.SaveUserConfig(c.Request.Context(), req); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, backend.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, tool.FastReturnError(err.Error()))
		return
	}
	notify.SendConfigNotification(types.NotifyTypeUserSettingsUpdated, map[string]any{"uid": req.UID})
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// HandleSaveGlobalConfig overwrites the global settings.
// POST /api/command/v1/save_global_config
func (ctrl *CommandController) HandleSaveGlobalConfig(c *gin.Context) {
	var req types.SaveGlobalConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("invalid request body: "+err.Error()))
		return
	}
	if err := ctrl.gw.SaveGlobalConfig(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	notify.SendConfigNotification(types.NotifyTypeGlobalSettingsUpdated, map[string]any{"maxCurr": req.MaxCurr})
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}
