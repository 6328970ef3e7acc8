package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/luisz08/notif-svc/internal/handler"
	"github.com/luisz08/notif-svc/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	ServiceInfo handler.ServiceInfo
	RateLimit   rate.Limit
	RateBurst   int
}

type Router struct {
	engine *gin.Engine
}

func NewRouter(cfg Config, log *zerolog.Logger, handlers ...Handler) *Router {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(log))

	if cfg.RateLimit > 0 {
		engine.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
	}

	engine.GET("/", handler.Root(cfg.ServiceInfo))
	engine.GET("/health", handler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
