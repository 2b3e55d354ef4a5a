// Package server exposes the catalog and cart over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sheetpos/pos/internal/config"
	"sheetpos/pos/internal/metrics"
	"sheetpos/pos/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

const (
	maxUploadSize   = "20M"
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	echo    *echo.Echo
	service *service.Service
	addr    string
}

func New(cfg config.ServerConfig, svc *service.Service, m *metrics.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxUploadSize))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))

	s := &Server{
		echo:    e,
		service: svc,
		addr:    cfg.Addr(),
	}

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group("/api")

	api.GET("/catalog", s.listProducts)
	api.GET("/catalog/status", s.catalogStatus)
	api.GET("/catalog/export", s.exportCatalog)
	api.POST("/catalog/load", s.loadCatalog)
	api.POST("/catalog/reload", s.reloadCatalog)
	api.POST("/catalog/upload", s.uploadCatalog)

	api.GET("/cart", s.getCart)
	api.DELETE("/cart", s.clearCart)
	api.POST("/cart/select", s.selectProduct)
	api.POST("/cart/items", s.addItem)
	api.POST("/cart/items/:index/step", s.stepItem)
	api.PUT("/cart/items/:index/quantity", s.setQuantity)
	api.PUT("/cart/items/:index/price", s.editPrice)
	api.DELETE("/cart/items/:index", s.removeItem)
	api.GET("/cart/receipt", s.previewReceipt)
	api.POST("/checkout", s.checkout)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("🌐 HTTP API listening on %s", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, open := <-errCh:
		if open {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Infof("🛑 Shutting down HTTP API")
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) health(c echo.Context) error {
	return ok(c, map[string]any{
		"status":         "ok",
		"catalog_loaded": s.service.Status().Loaded,
	})
}
