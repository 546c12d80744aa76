// Package http - HTTP сервер StoreHub: gin router, middleware, handlers.
//
// Server оборачивает net/http.Server: таймауты из секции server конфигурации,
// ошибки net/http идут в slog, остановка по SIGINT/SIGTERM или отмене context.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultMaxHeaderBytes - лимит заголовков запроса.
const DefaultMaxHeaderBytes = 1 << 20

// ServerConfig - настройки listener'а и таймаутов.
type ServerConfig struct {
	Host string
	Port string

	// ReadTimeout покрывает всё тело, включая multipart загрузку фото.
	ReadTimeout time.Duration
	// ReadHeaderTimeout, 0 = ReadTimeout
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	// ShutdownTimeout - сколько ждать активные запросы при остановке.
	ShutdownTimeout time.Duration
	// MaxHeaderBytes, 0 = DefaultMaxHeaderBytes
	MaxHeaderBytes int

	Logger *slog.Logger
}

// DefaultServerConfig - конфигурация по умолчанию.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "0.0.0.0",
		Port:            "8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxHeaderBytes:  DefaultMaxHeaderBytes,
		Logger:          slog.Default(),
	}
}

// Address возвращает host:port (IPv6 host берётся в скобки).
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// ============================================
// Server
// ============================================

// Server - HTTP сервер с graceful shutdown.
type Server struct {
	config     *ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *slog.Logger
}

// NewServer создаёт сервер поверх готового router; nil config = DefaultServerConfig.
func NewServer(config *ServerConfig, router *gin.Engine) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	readHeaderTimeout := config.ReadHeaderTimeout
	if readHeaderTimeout == 0 {
		readHeaderTimeout = config.ReadTimeout
	}
	maxHeaderBytes := config.MaxHeaderBytes
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = DefaultMaxHeaderBytes
	}

	return &Server{
		config: config,
		router: router,
		logger: logger,
		httpServer: &http.Server{
			Addr:              config.Address(),
			Handler:           router,
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
			ErrorLog:          slog.NewLogLogger(logger.With(slog.String("component", "net/http")).Handler(), slog.LevelWarn),
		},
	}
}

// Router возвращает gin engine (httptest без сетевого listener).
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start слушает config.Address() до Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve обслуживает готовый listener; http.ErrServerClosed не считается ошибкой.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", slog.String("address", ln.Addr().String()))

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается активных запросов, но не дольше ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	s.logger.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// ============================================
// Run
// ============================================

// Run работает до SIGINT/SIGTERM.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunWithContext(ctx)
}

// RunWithContext работает до отмены ctx или ошибки listener'а.
func (s *Server) RunWithContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.runListener(ctx, ln)
}

func (s *Server) runListener(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(ln)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.logger.Info("Stop requested", slog.String("cause", context.Cause(ctx).Error()))
	}

	// ctx уже отменён, shutdown получает свой
	return s.Shutdown(context.WithoutCancel(ctx))
}
