package main

import (
	"context"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/moyoez/upconfig/api"
	"github.com/moyoez/upconfig/api/notifyhub"
	"github.com/moyoez/upconfig/backend"
	"github.com/moyoez/upconfig/backup"
	"github.com/moyoez/upconfig/notify"
	"github.com/moyoez/upconfig/share"
	"github.com/moyoez/upconfig/store"
	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/transfer"
	"github.com/moyoez/upconfig/types"
)

func main() {
	cfg := tool.SetFlags()
	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if cfg.UseDataPath != "" {
		appCfg.DataPath = cfg.UseDataPath
	}
	if cfg.UsePort > 0 {
		appCfg.Port = cfg.UsePort
	}
	if cfg.UseRemote != "" {
		appCfg.RemoteURL = cfg.UseRemote
	}
	if cfg.UseRateLimit > 0 {
		appCfg.GatewayRateRPS = cfg.UseRateLimit
	}
	if cfg.SkipNotify || !appCfg.NotifyWS {
		notify.SetUseNotify(false)
	}

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(cfg.Log, appCfg.LogLevel)

	if appCfg.RemoteURL != "" {
		runClient(appCfg)
		return
	}
	serve(appCfg)
}

// serve owns the configuration file and exposes it over the command API.
func serve(appCfg types.AppConfig) {
	authority, err := backend.Open(appCfg.DataPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("Failed to open config data: %v", err)
	}
	authority.OnMaxConcurrentChanged(func(n uint32) {
		tool.DefaultLogger.Infof("Max concurrent uploads set to %d", n)
	})

	var hub *notifyhub.Hub
	if notify.UseNotify {
		hub = notifyhub.New()
		notify.SetHub(hub)
	}

	var backups *backup.Scheduler
	if appCfg.BackupCron != "" {
		backups = backup.NewScheduler(authority, appCfg.BackupDir, appCfg.BackupKeep)
		if err := backups.Start(appCfg.BackupCron); err != nil {
			tool.DefaultLogger.Warnf("Backups disabled: %v", err)
			backups = nil
		}
	}

	apiServer := api.NewServer(appCfg.Port, transfer.NewLocalGateway(authority), hub)
	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		tool.DefaultLogger.Warnf("API server shutdown: %v", err)
	}
	if backups != nil {
		backups.Stop()
	}
	if err := authority.Save(); err != nil {
		tool.DefaultLogger.Errorf("Failed to save config on exit: %v", err)
	}
}

// runClient syncs against a remote command API and prints a summary of the
// users and templates it holds.
func runClient(appCfg types.AppConfig) {
	gw := transfer.NewHTTPGateway(appCfg.RemoteURL, transfer.HTTPGatewayOptions{RateRPS: appCfg.GatewayRateRPS})
	registry := share.NewRegistry(time.Duration(appCfg.IdentityTTLMin) * time.Minute)
	s := store.New(gw,
		store.WithIdentitySource(registry),
		store.WithListener(func(n types.Notification) {
			tool.DefaultLogger.Debugf("[Store] %s %v", n.Type, n.Data)
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), tool.DefaultTimeout)
	defer cancel()
	if err := s.Load(ctx); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}

	snapshot := s.Snapshot()
	for _, uid := range slices.Sorted(maps.Keys(snapshot.Config)) {
		registry.Register(types.Identity{UID: uid, Username: snapshot.Config[uid].User.Name})
	}
	tool.DefaultLogger.Infof("Connected to %s: max_curr=%d, auto_upload=%t, log_level=%s",
		appCfg.RemoteURL, snapshot.MaxCurr, snapshot.AutoUpload, snapshot.LogLevel)
	for _, view := range s.UserTemplates() {
		tool.DefaultLogger.Infof("%s (%d): %d templates", view.User.Username, view.User.UID, len(view.Templates))
		for _, tpl := range view.Templates {
			tool.DefaultLogger.Infof("  - %s [tid=%d] %s", tpl.Name, tpl.Config.Tid, tpl.Config.Title)
		}
	}
	tool.DefaultLogger.Infof("Total templates: %d", s.TotalTemplateCount())
}
