package gui

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/syuuma-ito/whisper-app/internal/logging"
	"github.com/syuuma-ito/whisper-app/internal/session"
)

//go:embed static/*
var staticFiles embed.FS

// Settings shown in the UI; fixed for the lifetime of the server.
type Settings struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	ComputeType string `json:"compute_type"`
	Device      string `json:"device"`
	Language    string `json:"language"`
	OutputDir   string `json:"output_dir"`
}

// Server is the GUI shell: it forwards user actions to the session
// controller and pushes session events to the browser over a websocket.
type Server struct {
	controller *session.Controller
	settings   Settings
	logger     *logging.Logger
	engine     *gin.Engine
	hub        *hub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the server binds to localhost only
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewServer(
	controller *session.Controller,
	settings Settings,
	logger *logging.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		controller: controller,
		settings:   settings,
		logger:     logger,
		engine:     engine,
		hub:        newHub(logger),
	}
	s.routes()

	go s.forwardEvents()

	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api")
	api.GET("/state", s.handleState)
	api.GET("/settings", s.handleSettings)
	api.POST("/select", s.handleSelect)
	api.POST("/start", s.handleStart)
	api.POST("/cancel", s.handleCancel)
	api.POST("/dismiss", s.handleDismiss)
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Infow("GUI available", "url", "http://"+addr)

	select {
	case <-ctx.Done():
		s.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// forwardEvents pumps controller events into the websocket hub.
func (s *Server) forwardEvents() {
	for ev := range s.controller.Subscribe() {
		s.hub.broadcast(ev)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "missing UI assets")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debugw("websocket upgrade failed", "error", err)
		return
	}

	// initial snapshot so the page renders current state immediately
	if err := s.hub.add(conn, s.controller.Snapshot()); err != nil {
		s.logger.Debugw("websocket snapshot send failed", "error", err)
		return
	}

	// read loop only to detect the client going away
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings)
}

type selectRequest struct {
	Path string `json:"path" binding:"required"`
}

func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	if err := s.controller.SelectFile(req.Path); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrBusy) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleStart(c *gin.Context) {
	if err := s.controller.Start(context.Background()); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrBusy) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleCancel(c *gin.Context) {
	s.controller.Cancel()
	c.JSON(http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleDismiss(c *gin.Context) {
	s.controller.Dismiss()
	c.JSON(http.StatusOK, s.controller.Snapshot())
}
