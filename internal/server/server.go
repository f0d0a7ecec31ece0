package server

import (
	"time"

	"github.com/danmuck/microsync/internal/apps"
	"github.com/danmuck/microsync/internal/auth"
	"github.com/danmuck/microsync/internal/config"
	"github.com/danmuck/microsync/internal/observability"
	"github.com/danmuck/microsync/internal/router"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const version = "0.1.0"

type Server struct {
	Name       string
	addr       string
	mux        *router.Multiplexer
	registry   *apps.Registry
	admin      gin.HandlerFunc
	httpRouter *gin.Engine
	logger     zerolog.Logger
	appeared   time.Time
}

// New wires a server from cfg. A nil registry is replaced by one seeded
// from cfg.Apps.
func New(cfg config.Config, registry *apps.Registry, logger zerolog.Logger) (*Server, error) {
	if registry == nil {
		reg, err := cfg.Registry()
		if err != nil {
			return nil, err
		}
		registry = reg
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(observability.RequestLogger(logger))
	engine.Use(observability.RequestMetricsMiddleware(cfg.Name))
	if len(cfg.CorsOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CorsOrigins
		corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsCfg.AddAllowHeaders("Authorization")
		engine.Use(cors.New(corsCfg))
	}

	s := &Server{
		Name: cfg.Name,
		addr: cfg.Addr,
		mux: router.New(
			router.WithCodec(cfg.Codec()),
			router.WithPlacement(router.PlacementForMode(cfg.RoutingMode)),
			router.WithLogger(logger),
		),
		registry:   registry,
		admin:      adminGuard(cfg.AdminToken),
		httpRouter: engine,
		logger:     logger,
		appeared:   time.Now(),
	}
	s.RegisterRoutes()
	return s, nil
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.httpRouter
}

func (s *Server) Registry() *apps.Registry {
	return s.registry
}

func (s *Server) Run() error {
	s.logger.Info().Str("addr", s.addr).Str("name", s.Name).Msg("microsync listening")
	return s.httpRouter.Run(s.addr)
}

// adminGuard protects registry mutations when a token is configured.
func adminGuard(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return auth.RequireToken(auth.StaticToken{Token: token})
}
