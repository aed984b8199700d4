package transfer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/moyoez/upconfig/types"
)

func TestHTTPGatewayLoadConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CommandAPIPrefix+"/load_config" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}
		_, _ = io.WriteString(w, `{"data":{"max_curr":3,"config":{"5":{"user":{"name":"u"},"templates":{"b":{},"a":{}}}}}}`)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL+"/", HTTPGatewayOptions{})
	root, err := gw.LoadConfig(context.Background())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if root.MaxCurr != 3 || root.TranslationPrompt != types.DefaultTranslationPrompt {
		t.Errorf("unexpected globals %+v", root.GlobalSettings)
	}
	uc := root.User(5)
	if uc == nil || uc.User.UID != 5 {
		t.Fatalf("expected user 5, got %+v", uc)
	}
	if names := uc.Templates.Names(); len(names) != 2 || names[0] != "b" {
		t.Errorf("expected backend order [b a], got %v", names)
	}
}

func TestHTTPGatewayMissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	if _, err := NewHTTPGateway(srv.URL, HTTPGatewayOptions{}).LoadConfig(context.Background()); err == nil {
		t.Fatal("expected error for response without data")
	}
}

func TestHTTPGatewayCommandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CommandAPIPrefix + "/save_user_config":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"user config not found"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, HTTPGatewayOptions{})
	err := gw.SaveUserConfig(context.Background(), types.SaveUserConfigRequest{UID: 1})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cmdErr.StatusCode != http.StatusNotFound || cmdErr.Message != "user config not found" {
		t.Errorf("unexpected error %+v", cmdErr)
	}

	err = gw.SaveConfig(context.Background())
	if !errors.As(err, &cmdErr) || cmdErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Errorf("expected status text fallback, got %v", err)
	}
}

func TestHTTPGatewayTemplateCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req types.TemplateCommandRequest
		if err := sonic.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body %s: %v", body, err)
		}
		if req.UID != 9 || req.TemplateName != "daily" {
			t.Errorf("unexpected request %+v", req)
		}
		if strings.HasSuffix(r.URL.Path, "/delete_user_template") {
			if req.Template != nil {
				t.Error("delete should not carry a template")
			}
			_, _ = io.WriteString(w, `{"success":true,"message":"template deleted"}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"template added","template":{"title":"stored","copyright":1}}`)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, HTTPGatewayOptions{})
	tpl := types.DefaultTemplate()
	tpl.Title = "sent"
	resp, err := gw.AddUserTemplate(context.Background(), 9, "daily", tpl)
	if err != nil {
		t.Fatalf("AddUserTemplate: %v", err)
	}
	if !resp.Success || resp.Template == nil || resp.Template.Title != "stored" {
		t.Errorf("unexpected response %+v", resp)
	}

	resp, err = gw.DeleteUserTemplate(context.Background(), 9, "daily")
	if err != nil || !resp.Success || resp.Template != nil {
		t.Errorf("unexpected delete response %+v (%v)", resp, err)
	}
}

func TestHTTPGatewayRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, HTTPGatewayOptions{RateRPS: 0.1})
	if err := gw.SaveConfig(context.Background()); err != nil {
		t.Fatalf("first call should pass the limiter: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := gw.SaveConfig(ctx); err == nil {
		t.Fatal("expected limiter to fail on a short deadline")
	}
}
