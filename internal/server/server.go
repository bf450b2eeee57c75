package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"tebex-support-bot/internal/handler"
	"tebex-support-bot/internal/middleware"
	"tebex-support-bot/internal/service"
)

type Server struct {
	echo           *echo.Echo
	webhookHandler *handler.WebhookHandler
}

func NewServer(purchases service.PurchaseService, webhookSecret string, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())

	s := &Server{
		echo:           e,
		webhookHandler: handler.NewWebhookHandler(purchases, logger),
	}

	s.setupRoutes(webhookSecret)
	return s
}

func (s *Server) setupRoutes(webhookSecret string) {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	webhook := s.echo.Group("/webhook", middleware.SharedSecret(webhookSecret))
	webhook.POST("/tebex", s.webhookHandler.TebexNotification)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Handler exposes the router for in-process requests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
