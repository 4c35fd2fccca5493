package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	app "ppe-gate/internal/application"
	"ppe-gate/internal/domain/port"
	"ppe-gate/internal/timeutil"
)

// Deps то, что REST показывает и меняет
type Deps struct {
	GateID  string
	Board   *app.StatusBoard
	Session *app.Session
	History port.PassHistory // nil, если журнал выключен
	Clock   timeutil.Clock
}

type Server struct {
	deps   Deps
	router *gin.Engine
	server *http.Server
	log    zerolog.Logger
}

func NewServer(deps Deps, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		deps:   deps,
		router: gin.New(),
		log:    logger.With().Str("component", "rest").Logger(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)
	s.router.GET("/status", s.status)
	s.router.POST("/reset", s.reset)

	required := s.router.Group("/required")
	{
		required.GET("", s.getRequired)
		required.PUT("", s.putRequired)
		required.POST("/:class/toggle", s.toggleRequired)
	}

	s.router.GET("/passes", s.listPasses)
}

// Handler отдаёт роутер, например для httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start слушает порт до Stop
func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("Starting REST API")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info().Msg("Stopping REST API")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
