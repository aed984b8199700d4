package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upconfig/backend"
	"github.com/moyoez/upconfig/transfer"
	"github.com/moyoez/upconfig/types"
)

// setupRouter creates a test router with the command endpoints
func setupRouter() (*gin.Engine, *backend.Authority) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	authority := backend.New(nil, "")
	authority.NewUserConfig(100, "alice", nil, nil)
	ctrl := NewCommandController(transfer.NewLocalGateway(authority))

	command := router.Group("/api/command/v1")
	{
		command.GET("/load_config", ctrl.HandleLoadConfig)
		command.POST("/save_config", ctrl.HandleSaveConfig)
		command.POST("/add_user_template", ctrl.HandleAddUserTemplate)
		command.POST("/update_user_template", ctrl.HandleUpdateUserTemplate)
		command.POST("/delete_user_template", ctrl.HandleDeleteUserTemplate)
		command.POST("/save_user_config", ctrl.HandleSaveUserConfig)
		command.POST("/save_global_config", ctrl.HandleSaveGlobalConfig)
		command.GET("/status", UserStatus)
	}
	return router, authority
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "127.0.0.1:12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAddUserTemplate(t *testing.T) {
	router, authority := setupRouter()
	tpl := types.DefaultTemplate()
	tpl.Title = "weekly"

	w := doJSON(t, router, "POST", "/api/command/v1/add_user_template", map[string]any{
		"uid":          100,
		"templateName": "weekly",
		"template":     tpl,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp types.TemplateCommandResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !resp.Success || resp.Template == nil || resp.Template.Title != "weekly" {
		t.Errorf("unexpected response %+v", resp)
	}
	if !authority.Config().User(100).Templates.Has("weekly") {
		t.Error("template not stored in backend")
	}
}

func TestHandleAddUserTemplateUnknownUser(t *testing.T) {
	router, _ := setupRouter()
	w := doJSON(t, router, "POST", "/api/command/v1/add_user_template", map[string]any{
		"uid":          7,
		"templateName": "x",
		"template":     types.DefaultTemplate(),
	})
	var resp types.TemplateCommandResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Success || resp.Message == "" {
		t.Errorf("expected rejection with message, got %+v", resp)
	}
}

func TestHandleAddUserTemplateMissingTemplate(t *testing.T) {
	router, _ := setupRouter()
	w := doJSON(t, router, "POST", "/api/command/v1/add_user_template", map[string]any{
		"uid":          100,
		"templateName": "x",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status code 400, got %d", w.Code)
	}
}

func TestHandleDeleteUserTemplate(t *testing.T) {
	router, authority := setupRouter()
	if _, err := authority.AddUserTemplate(100, "old", types.DefaultTemplate()); err != nil {
		t.Fatal(err)
	}
	w := doJSON(t, router, "POST", "/api/command/v1/delete_user_template", map[string]any{
		"uid":          100,
		"templateName": "old",
	})
	var resp types.TemplateCommandResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !resp.Success || resp.Template != nil {
		t.Errorf("unexpected response %+v", resp)
	}

	w = doJSON(t, router, "POST", "/api/command/v1/delete_user_template", map[string]any{
		"uid":          100,
		"templateName": "old",
	})
	resp = types.TemplateCommandResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success {
		t.Error("second delete should report failure")
	}
}

func TestHandleSaveUserConfigUnknownUser(t *testing.T) {
	router, _ := setupRouter()
	w := doJSON(t, router, "POST", "/api/command/v1/save_user_config", map[string]any{
		"uid":   404,
		"limit": 1,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["error"]; !ok {
		t.Error("Response should contain error")
	}
}

func TestHandleSaveGlobalConfig(t *testing.T) {
	router, authority := setupRouter()
	w := doJSON(t, router, "POST", "/api/command/v1/save_global_config", map[string]any{
		"maxCurr":           2,
		"autoStart":         false,
		"autoUpload":        true,
		"logLevel":          "debug",
		"translationPrompt": "",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code 200, got %d", w.Code)
	}
	g := authority.Config().GlobalSettings
	if g.MaxCurr != 2 || g.AutoStart || g.LogLevel != "debug" {
		t.Errorf("settings not applied: %+v", g)
	}
	if g.TranslationPrompt != types.DefaultTranslationPrompt {
		t.Error("blank prompt should fall back to the default")
	}
}

func TestHandleLoadConfig(t *testing.T) {
	router, _ := setupRouter()
	w := doJSON(t, router, "GET", "/api/command/v1/load_config", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code 200, got %d", w.Code)
	}
	var body struct {
		Data types.ConfigRoot `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body.Data.User(100) == nil || body.Data.MaxCurr != 1 {
		t.Errorf("unexpected config %+v", body.Data)
	}
}
