package server

import (
	"context"
	"net/http"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/internal/bridge"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/server/handlers"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/server/middleware"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/gin-gonic/gin"
)

// Services is everything the host exposes over HTTP. Exactly one of Tap and
// Snake is set, matching the configured variant.
type Services struct {
	Identity *services.IdentityService
	Provider *services.ProviderSession
	Entry    *services.EntryService
	Reporter *services.SettlementReporter
	Tap      *services.TapService
	Snake    *services.SnakeService
	Hub      *bridge.Hub
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(cfg *models.Config, svc Services) *Server {
	server := &Server{router: gin.New()}

	server.router.Use(gin.Recovery())
	server.router.Use(middleware.RequestLogger())
	server.router.Use(middleware.CORSMiddleware())
	server.router.Use(middleware.ErrorMiddleware())
	server.router.Use(middleware.RateLimit(50, 100))

	var clients func() int
	if svc.Hub != nil {
		clients = svc.Hub.Clients
		server.router.GET("/bridge", gin.WrapF(svc.Hub.HandleWebSocket))
	}
	handlers.NewHealthHandler(cfg, clients).RegisterRoutes(server.router.Group(""))

	v1 := server.router.Group("/api/v1")
	{
		handlers.NewAuthHandler(svc.Identity).RegisterRoutes(v1)
		handlers.NewProviderHandler(svc.Provider, svc.Entry).RegisterRoutes(v1)
		handlers.NewSettlementHandler(svc.Identity, svc.Reporter).RegisterRoutes(v1)

		if svc.Tap != nil {
			handlers.NewTapHandler(svc.Tap).RegisterRoutes(v1)
		}
		if svc.Snake != nil {
			handlers.NewSnakeHandler(svc.Snake).RegisterRoutes(v1)
		}
	}

	// Routes of the other game variant land here too.
	server.router.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, middleware.ErrNotFound)
	})

	return server
}

// Start blocks until the server stops. There is no WriteTimeout: a fee request
// stays open while the overlay is shown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
