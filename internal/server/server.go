package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"orderservice/internal/config"
	"orderservice/internal/handler"
	"orderservice/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	e               *echo.Echo
	addr            string
	shutdownTimeout time.Duration
	log             *zap.Logger
}

func New(cfg config.Config, log *zap.Logger, orderH *handler.OrderHandler, healthH *handler.HealthHandler) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(log)
	e.IPExtractor = ipExtractor(cfg)

	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	}

	s := &Server{
		e:               e,
		addr:            cfg.Addr(),
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             log,
	}
	s.registerRoutes(orderH, healthH)
	return s
}

// レート制限のキーになるクライアントIP。
// プロキシ配下でなければ接続元だけを見る（X-Forwarded-Forは詐称できる）。
func ipExtractor(cfg config.Config) echo.IPExtractor {
	if cfg.TrustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}

// テストでhttptestに渡す用
func (s *Server) Handler() http.Handler {
	return s.e
}

// ctxが終わるまで待ち受け、終わったらgraceful shutdownする
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server started", zap.String("addr", s.addr))
		if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.log.Info("server shutting down")
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
