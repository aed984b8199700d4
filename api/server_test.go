package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upconfig/backend"
	"github.com/moyoez/upconfig/store"
	"github.com/moyoez/upconfig/transfer"
	"github.com/moyoez/upconfig/types"
)

func newTestServer(t *testing.T) (*httptest.Server, *backend.Authority) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authority := backend.New(nil, filepath.Join(t.TempDir(), "config.json"))
	authority.NewUserConfig(100, "alice", []byte(`{"SESSDATA":"x"}`), nil)
	srv := httptest.NewServer(NewServer(0, transfer.NewLocalGateway(authority), nil).Handler())
	t.Cleanup(srv.Close)
	return srv, authority
}

func TestStoreOverHTTPGateway(t *testing.T) {
	srv, authority := newTestServer(t)
	gw := transfer.NewHTTPGateway(srv.URL, transfer.HTTPGatewayOptions{Client: srv.Client(), RateRPS: 100})
	s := store.New(gw)
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, name := range []string{"zeta", "alpha"} {
		if err := s.AddTemplate(ctx, 100, name, nil); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if err := s.DuplicateTemplate(ctx, 100, "zeta", "beta"); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if err := s.RemoveTemplate(ctx, 100, "alpha"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	limit := uint32(2)
	if err := s.UpdateUserSettings(ctx, 100, types.UserSettingsPatch{Limit: &limit}); err != nil {
		t.Fatalf("user settings: %v", err)
	}

	names := s.Snapshot().User(100).Templates.Names()
	if len(names) != 2 || names[0] != "zeta" || names[1] != "beta" {
		t.Errorf("unexpected template order %v", names)
	}
	if s.Diverged() {
		t.Error("store should match backend after persist")
	}
	if !authority.Config().Equal(s.Snapshot()) {
		t.Error("backend and client caches differ")
	}
}

func TestHTTPGatewayCarriesBackendMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	gw := transfer.NewHTTPGateway(srv.URL, transfer.HTTPGatewayOptions{Client: srv.Client()})
	ctx := context.Background()

	resp, err := gw.DeleteUserTemplate(ctx, 100, "nothing")
	if err != nil || resp.Success || resp.Message == "" {
		t.Fatalf("expected rejected delete with message, got %+v %v", resp, err)
	}
	err = gw.SaveUserConfig(ctx, types.SaveUserConfigRequest{UID: 999})
	var cmdErr *transfer.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.StatusCode != http.StatusNotFound || cmdErr.Message == "" {
		t.Fatalf("expected 404 CommandError with message, got %v", err)
	}
}

func TestCommandRoutesRejectRemoteClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewServer(0, transfer.NewLocalGateway(backend.New(nil, "")), nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/command/v1/load_config", nil)
	req.RemoteAddr = "192.168.1.20:5555"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status code 403, got %d", w.Code)
	}
}
