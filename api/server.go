package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/upconfig/api/controllers"
	"github.com/moyoez/upconfig/api/middlewares"
	"github.com/moyoez/upconfig/api/notifyhub"
	"github.com/moyoez/upconfig/notify"
	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/transfer"
)

// Server exposes a command gateway over HTTP.
type Server struct {
	port   int
	gw     transfer.Gateway
	hub    *notifyhub.Hub
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

// NewServer creates the command API for gw. hub may be nil to disable the
// notify websocket.
func NewServer(port int, gw transfer.Gateway, hub *notifyhub.Hub) *Server {
	return &Server{
		port: port,
		gw:   gw,
		hub:  hub,
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	commandCtrl := controllers.NewCommandController(s.gw)

	command := engine.Group(transfer.CommandAPIPrefix, middlewares.OnlyAllowLocal, middlewares.RequestID)
	{
		command.GET("/load_config", commandCtrl.HandleLoadConfig)
		command.POST("/save_config", commandCtrl.HandleSaveConfig)
		command.POST("/add_user_template", commandCtrl.HandleAddUserTemplate)
		command.POST("/update_user_template", commandCtrl.HandleUpdateUserTemplate)
		command.POST("/delete_user_template", commandCtrl.HandleDeleteUserTemplate)
		command.POST("/save_user_config", commandCtrl.HandleSaveUserConfig)
		command.POST("/save_global_config", commandCtrl.HandleSaveGlobalConfig)
		command.GET("/status", controllers.UserStatus)
		if s.hub != nil && notify.NotifyWSEnabled() {
			command.GET("/notify-ws", notifyhub.HandleNotifyWS(s.hub))
		}
	}
	return engine
}

// Handler builds the routes without listening, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		s.engine = s.setupRoutes()
	}
	return s.engine
}

// Start listens on the configured port and blocks until the server stops.
func (s *Server) Start() error {
	handler := s.Handler()

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: handler,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting command API on http://0.0.0.0:%d%s", s.port, transfer.CommandAPIPrefix)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
