package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"crypto-compare/src/interfaces"
	"crypto-compare/src/logger"
	"crypto-compare/src/metrics"
	"crypto-compare/src/models"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Controller interfaces.IDashboardController
	Metrics    *metrics.Metrics
	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	broadcast   chan models.MViewMessage
	register    chan *Client
	unregister  chan *Client
	direct      chan directMessage
	quit        chan struct{}
	connections atomic.Int64
	lastUpdate  atomic.Int64

	// Lifetime of commands received over websockets
	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(
	cfg *models.MConfig,
	controller interfaces.IDashboardController,
	m *metrics.Metrics,
	logger *logger.Logger,
) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &DashboardServer{
		Config:     cfg,
		Logger:     logger,
		Controller: controller,
		Metrics:    m,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		// Buffered so publishers do not wait on slow clients
		broadcast:  make(chan models.MViewMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan directMessage),
		quit:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.engine.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))

	// setup web routes
	s.setupRoutes()

	go s.handleWebsockets()
	return s
}

// requestLogger routes gin access logs through the application logger
func (s *DashboardServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// HTML dashboard
	s.engine.GET("/", s.getIndex)
	s.engine.POST("/actions/:type", s.postAction)

	// REST API endpoints
	s.engine.GET("/api/view", s.getView)
	s.engine.POST("/api/commands", s.postCommand)
	s.engine.GET("/api/preferences", s.getPreferences)
	s.engine.GET("/api/metrics", s.getMetrics)
	s.engine.GET("/api/health", s.getHealth)

	// Prometheus
	s.engine.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the routes without a listener
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until Stop is called
func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting server on http://%s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop shuts the listener down and disconnects websocket clients
func (s *DashboardServer) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.quit)
		err = s.httpServer.Shutdown(ctx)
		s.Logger.Info("Server stopped")
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"View":   s.Controller.View(),
		"Notice": c.Query("notice"),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getView(c *gin.Context) {
	c.JSON(http.StatusOK, s.Controller.View())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postCommand(c *gin.Context) {
	var cmd models.MCommand
	if err := c.ShouldBindJSON(&cmd); err != nil || cmd.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command payload"})
		return
	}

	if err := s.Controller.Dispatch(c.Request.Context(), cmd); err != nil {
		status, notice := commandError(err)
		c.JSON(status, gin.H{"error": err.Error(), "notice": notice})
		return
	}

	c.JSON(http.StatusOK, s.Controller.View())
}

// -----------------------------------------------------------------------------

// postAction handles the HTML forms and redirects back to the dashboard
func (s *DashboardServer) postAction(c *gin.Context) {
	cmd, err := commandFromForm(c.Param("type"), c.PostForm)
	target := "/"
	if err == nil {
		err = s.Controller.Dispatch(c.Request.Context(), cmd)
	}
	if err != nil {
		_, notice := commandError(err)
		target = "/?notice=" + url.QueryEscape(notice)
	}
	c.Redirect(http.StatusSeeOther, target)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, s.Controller.Preferences())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Controller.FetchMetrics())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"connections":  s.connections.Load(),
		"latestUpdate": s.lastUpdate.Load(),
	})
}
